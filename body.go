package physics

import (
	"fmt"
	"math"
)

// body types
const (
	BODY_DYNAMIC = iota
	BODY_KINEMATIC
	BODY_STATIC
)

// BodyID is a stable handle to a body. It stops resolving once the body is destroyed, even if
// its storage is reused.
type BodyID slotID

// BodyDef holds the data to construct a body. Definitions can be reused.
type BodyDef struct {
	Type     int
	Position Vector
	Angle    float64

	LinearVelocity  Vector
	AngularVelocity float64

	LinearDamping  float64
	AngularDamping float64

	AllowSleep    bool
	Awake         bool
	FixedRotation bool
	// Bullets are swept against other moving bodies to prevent tunneling.
	Bullet bool
	Active bool

	UserData interface{}
}

func NewBodyDef(bodyType int, position Vector) *BodyDef {
	return &BodyDef{
		Type:       bodyType,
		Position:   position,
		AllowSleep: true,
		Awake:      true,
		Active:     true,
	}
}

// ContactEdge connects a body to a contact and to the other body of the contact.
type ContactEdge struct {
	Other   *Body
	Contact *Contact
}

type Body struct {
	id       BodyID
	world    *World
	bodyType int

	// body origin transform
	xf Transform
	// swept motion of the center of mass, for continuous collision
	sweep Sweep

	// mass and it's inverse
	m     float64
	m_inv float64

	// moment of inertia about the center of mass and it's inverse
	i     float64
	i_inv float64

	v Vector
	w float64

	f Vector
	t float64

	linearDamping  float64
	angularDamping float64

	sleepTime float64

	awake         bool
	allowSleep    bool
	island        bool
	bullet        bool
	toi           bool
	fixedRotation bool
	active        bool

	fixtures     []*Fixture
	contactEdges []ContactEdge
	constraints  []*Constraint

	UserData interface{}
}

func (b *Body) String() string {
	return fmt.Sprint("Body ", b.id.index, ":", b.id.generation)
}

func newBody(def *BodyDef, world *World) *Body {
	assert(def.Position.IsValid(), "Invalid body position")
	assert(def.LinearVelocity.IsValid(), "Invalid body velocity")
	assert(!math.IsNaN(def.Angle) && !math.IsNaN(def.AngularVelocity), "Invalid body angle")
	assert(def.LinearDamping >= 0 && def.AngularDamping >= 0, "Damping must not be negative")

	body := &Body{
		world:          world,
		bodyType:       def.Type,
		xf:             NewTransform(def.Position, def.Angle),
		v:              def.LinearVelocity,
		w:              def.AngularVelocity,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		awake:          def.Awake,
		allowSleep:     def.AllowSleep,
		bullet:         def.Bullet,
		fixedRotation:  def.FixedRotation,
		active:         def.Active,
		UserData:       def.UserData,
	}

	body.sweep.C0 = body.xf.P
	body.sweep.C = body.xf.P
	body.sweep.A0 = def.Angle
	body.sweep.A = def.Angle

	if body.bodyType == BODY_DYNAMIC {
		body.m = 1
		body.m_inv = 1
	}
	if body.bodyType == BODY_STATIC {
		body.awake = false
		body.v = Vector{}
		body.w = 0
	}
	return body
}

func (b *Body) ID() BodyID {
	return b.id
}

func (b *Body) World() *World {
	return b.world
}

func (b *Body) assertUnlocked() {
	assert(b.world != nil, "Body has been destroyed")
	assert(!b.world.locked, "World is locked")
}

// CreateFixture attaches a new fixture and updates the mass when the fixture has density.
// Contacts for the fixture are created on the next step.
func (b *Body) CreateFixture(def *FixtureDef) *Fixture {
	b.assertUnlocked()
	world := b.world

	world.fixtureSeq++
	fixture := newFixture(b, def, world.fixtureSeq)
	if b.active {
		fixture.createProxy(world.contactManager.si, b.xf)
	}
	b.fixtures = append(b.fixtures, fixture)

	if fixture.density > 0 {
		b.ResetMassData()
	}

	// let the world know there is a new fixture so that contacts are created at the start of the next step
	world.newFixture = true
	return fixture
}

// DestroyFixture removes the fixture and its contacts. The body mass is reset.
func (b *Body) DestroyFixture(fixture *Fixture) {
	b.assertUnlocked()
	assert(fixture.body == b, "Fixture belongs to another body")

	found := false
	for i, f := range b.fixtures {
		if f == fixture {
			// leak-free delete from slice, keeping the order
			copy(b.fixtures[i:], b.fixtures[i+1:])
			b.fixtures[len(b.fixtures)-1] = nil
			b.fixtures = b.fixtures[:len(b.fixtures)-1]
			found = true
			break
		}
	}
	assert(found, "Fixture not found on body")

	world := b.world
	for i := 0; i < len(b.contactEdges); {
		contact := b.contactEdges[i].Contact
		if contact.fixtureA == fixture || contact.fixtureB == fixture {
			// destroying the contact removes this edge
			world.contactManager.Destroy(contact)
		} else {
			i++
		}
	}

	fixture.destroyProxy(world.contactManager.si)
	fixture.body = nil

	b.ResetMassData()
}

func (b *Body) Fixtures() []*Fixture {
	return b.fixtures
}

func (b *Body) ContactEdges() []ContactEdge {
	return b.contactEdges
}

func (b *Body) Constraints() []*Constraint {
	return b.constraints
}

func (b *Body) EachFixture(f func(*Fixture)) {
	for i := 0; i < len(b.fixtures); i++ {
		f(b.fixtures[i])
	}
}

func (b *Body) EachConstraint(f func(*Constraint)) {
	for i := 0; i < len(b.constraints); i++ {
		f(b.constraints[i])
	}
}

func (b *Body) addContactEdge(other *Body, contact *Contact) {
	b.contactEdges = append(b.contactEdges, ContactEdge{Other: other, Contact: contact})
}

func (b *Body) removeContactEdge(contact *Contact) {
	for i, edge := range b.contactEdges {
		if edge.Contact == contact {
			last := len(b.contactEdges) - 1
			b.contactEdges[i] = b.contactEdges[last]
			b.contactEdges[last] = ContactEdge{}
			b.contactEdges = b.contactEdges[:last]
			return
		}
	}
}

func (b *Body) removeConstraint(constraint *Constraint) {
	for i, c := range b.constraints {
		if c == constraint {
			last := len(b.constraints) - 1
			b.constraints[i] = b.constraints[last]
			b.constraints[last] = nil
			b.constraints = b.constraints[:last]
			return
		}
	}
}

// ResetMassData recomputes mass, center of mass and inertia from the fixture densities.
// Dynamic bodies without mass get a mass of 1.
func (b *Body) ResetMassData() {
	b.m = 0
	b.m_inv = 0
	b.i = 0
	b.i_inv = 0
	b.sweep.LocalCenter = Vector{}

	// static and kinematic bodies have zero mass
	if b.bodyType != BODY_DYNAMIC {
		b.sweep.C0 = b.xf.P
		b.sweep.C = b.xf.P
		b.sweep.A0 = b.sweep.A
		return
	}

	// accumulate mass over all fixtures
	var localCenter Vector
	for _, fixture := range b.fixtures {
		if fixture.density == 0 {
			continue
		}

		massData := fixture.GetMassData()
		b.m += massData.Mass
		localCenter = localCenter.Add(massData.Center.Mult(massData.Mass))
		b.i += massData.I
	}

	if b.m > 0 {
		b.m_inv = 1.0 / b.m
		localCenter = localCenter.Mult(b.m_inv)
	} else {
		// force all dynamic bodies to have a positive mass
		b.m = 1
		b.m_inv = 1
	}

	if b.i > 0 && !b.fixedRotation {
		// center the inertia about the center of mass
		b.i -= b.m * localCenter.Dot(localCenter)
		assert(b.i > 0, "Body inertia must be positive")
		b.i_inv = 1.0 / b.i
	} else {
		b.i = 0
		b.i_inv = 0
	}

	b.moveCenter(localCenter)
}

// SetMassData overrides the mass properties computed from the fixtures. Only dynamic bodies
// are affected.
func (b *Body) SetMassData(massData MassData) {
	b.assertUnlocked()
	if b.bodyType != BODY_DYNAMIC {
		return
	}

	b.m_inv = 0
	b.i = 0
	b.i_inv = 0

	b.m = massData.Mass
	if b.m <= 0 {
		b.m = 1
	}
	b.m_inv = 1.0 / b.m

	if massData.I > 0 && !b.fixedRotation {
		b.i = massData.I - b.m*massData.Center.Dot(massData.Center)
		assert(b.i > 0, "Body inertia must be positive")
		b.i_inv = 1.0 / b.i
	}

	b.moveCenter(massData.Center)
}

// moveCenter shifts the center of mass and keeps the velocity of the center consistent.
func (b *Body) moveCenter(localCenter Vector) {
	oldCenter := b.sweep.C
	b.sweep.LocalCenter = localCenter
	b.sweep.C = b.xf.Apply(localCenter)
	b.sweep.C0 = b.sweep.C

	b.v = b.v.Add(CrossScalar(b.w, b.sweep.C.Sub(oldCenter)))
}

func (b *Body) GetMassData() MassData {
	return MassData{
		Mass:   b.m,
		Center: b.sweep.LocalCenter,
		I:      b.Inertia(),
	}
}

func (b *Body) Mass() float64 {
	return b.m
}

// Inertia is the rotational inertia about the body origin.
func (b *Body) Inertia() float64 {
	return b.i + b.m*b.sweep.LocalCenter.Dot(b.sweep.LocalCenter)
}

func (b *Body) Type() int {
	return b.bodyType
}

// SetType changes the body type, resetting the mass and dropping the body's contacts. They
// are recreated on the next step.
func (b *Body) SetType(bodyType int) {
	b.assertUnlocked()
	if b.bodyType == bodyType {
		return
	}
	b.bodyType = bodyType

	b.ResetMassData()

	if bodyType == BODY_STATIC {
		b.v = Vector{}
		b.w = 0
		b.sweep.A0 = b.sweep.A
		b.sweep.C0 = b.sweep.C
		b.synchronizeFixtures()
	}

	b.SetAwake(true)

	b.f = Vector{}
	b.t = 0

	world := b.world
	for len(b.contactEdges) > 0 {
		world.contactManager.Destroy(b.contactEdges[0].Contact)
	}

	// touch the proxies so that new contacts will be created
	b.touchProxies()
}

func (b *Body) touchProxies() {
	si := b.world.contactManager.si
	for _, fixture := range b.fixtures {
		if fixture.proxyId != nullNode {
			si.TouchProxy(fixture.proxyId)
		}
	}
}

func (b *Body) Transform() Transform {
	return b.xf
}

// Position is the world position of the body origin.
func (b *Body) Position() Vector {
	return b.xf.P
}

func (b *Body) Angle() float64 {
	return b.sweep.A
}

func (b *Body) WorldCenter() Vector {
	return b.sweep.C
}

func (b *Body) LocalCenter() Vector {
	return b.sweep.LocalCenter
}

// SetTransform teleports the body origin. Contacts are updated on the next step.
func (b *Body) SetTransform(position Vector, angle float64) {
	b.assertUnlocked()

	b.xf = NewTransform(position, angle)

	b.sweep.C = b.xf.Apply(b.sweep.LocalCenter)
	b.sweep.A = angle

	b.sweep.C0 = b.sweep.C
	b.sweep.A0 = angle

	si := b.world.contactManager.si
	for _, fixture := range b.fixtures {
		fixture.synchronize(si, b.xf, b.xf)
	}

	b.world.contactManager.FindNewContacts()
}

func (b *Body) SetPosition(position Vector) {
	b.SetTransform(position, b.sweep.A)
}

func (b *Body) SetAngle(angle float64) {
	b.SetTransform(b.xf.P, angle)
}

func (b *Body) LinearVelocity() Vector {
	return b.v
}

func (b *Body) SetLinearVelocity(v Vector) {
	if b.bodyType == BODY_STATIC {
		return
	}
	if v.Dot(v) > 0 {
		b.SetAwake(true)
	}
	b.v = v
}

func (b *Body) AngularVelocity() float64 {
	return b.w
}

func (b *Body) SetAngularVelocity(w float64) {
	if b.bodyType == BODY_STATIC {
		return
	}
	if w*w > 0 {
		b.SetAwake(true)
	}
	b.w = w
}

func (b *Body) Force() Vector {
	return b.f
}

func (b *Body) Torque() float64 {
	return b.t
}

// ApplyForce applies a force at a world point, producing a torque about the center of mass.
func (b *Body) ApplyForce(force, point Vector) {
	if b.bodyType != BODY_DYNAMIC {
		return
	}
	b.SetAwake(true)
	b.f = b.f.Add(force)
	b.t += point.Sub(b.sweep.C).Cross(force)
}

func (b *Body) ApplyForceToCenter(force Vector) {
	if b.bodyType != BODY_DYNAMIC {
		return
	}
	b.SetAwake(true)
	b.f = b.f.Add(force)
}

func (b *Body) ApplyTorque(torque float64) {
	if b.bodyType != BODY_DYNAMIC {
		return
	}
	b.SetAwake(true)
	b.t += torque
}

// ApplyLinearImpulse changes the velocity immediately. The point is in world coordinates.
func (b *Body) ApplyLinearImpulse(impulse, point Vector) {
	if b.bodyType != BODY_DYNAMIC {
		return
	}
	b.SetAwake(true)
	b.v = b.v.Add(impulse.Mult(b.m_inv))
	b.w += b.i_inv * point.Sub(b.sweep.C).Cross(impulse)
}

func (b *Body) ApplyAngularImpulse(impulse float64) {
	if b.bodyType != BODY_DYNAMIC {
		return
	}
	b.SetAwake(true)
	b.w += b.i_inv * impulse
}

func (b *Body) LocalToWorld(point Vector) Vector {
	return b.xf.Apply(point)
}

func (b *Body) WorldToLocal(point Vector) Vector {
	return b.xf.Unapply(point)
}

func (b *Body) WorldVector(v Vector) Vector {
	return b.xf.Q.Rotate(v)
}

func (b *Body) LocalVector(v Vector) Vector {
	return b.xf.Q.Unrotate(v)
}

func (b *Body) VelocityAtWorldPoint(point Vector) Vector {
	return b.v.Add(CrossScalar(b.w, point.Sub(b.sweep.C)))
}

func (b *Body) VelocityAtLocalPoint(point Vector) Vector {
	return b.VelocityAtWorldPoint(b.xf.Apply(point))
}

func (b *Body) LinearDamping() float64 {
	return b.linearDamping
}

func (b *Body) SetLinearDamping(damping float64) {
	b.linearDamping = damping
}

func (b *Body) AngularDamping() float64 {
	return b.angularDamping
}

func (b *Body) SetAngularDamping(damping float64) {
	b.angularDamping = damping
}

func (b *Body) IsBullet() bool {
	return b.bullet
}

func (b *Body) SetBullet(flag bool) {
	b.bullet = flag
}

func (b *Body) IsSleepingAllowed() bool {
	return b.allowSleep
}

func (b *Body) SetSleepingAllowed(flag bool) {
	b.allowSleep = flag
	if !flag {
		b.SetAwake(true)
	}
}

func (b *Body) IsAwake() bool {
	return b.awake
}

// SetAwake wakes the body or puts it to sleep. A sleeping body has no velocity and no forces.
// Static bodies never wake.
func (b *Body) SetAwake(flag bool) {
	if flag {
		if !b.awake && b.bodyType != BODY_STATIC {
			b.awake = true
			b.sleepTime = 0
		}
	} else {
		b.awake = false
		b.sleepTime = 0
		b.v = Vector{}
		b.w = 0
		b.f = Vector{}
		b.t = 0
	}
}

func (b *Body) IsActive() bool {
	return b.active
}

// SetActive adds or removes the body from the simulation. An inactive body has no proxies and
// no contacts, but keeps its fixtures and joints.
func (b *Body) SetActive(flag bool) {
	b.assertUnlocked()
	if flag == b.active {
		return
	}
	b.active = flag

	world := b.world
	si := world.contactManager.si
	if flag {
		for _, fixture := range b.fixtures {
			fixture.createProxy(si, b.xf)
		}
		world.newFixture = true
	} else {
		for _, fixture := range b.fixtures {
			fixture.destroyProxy(si)
		}
		for len(b.contactEdges) > 0 {
			world.contactManager.Destroy(b.contactEdges[0].Contact)
		}
	}
}

func (b *Body) IsFixedRotation() bool {
	return b.fixedRotation
}

func (b *Body) SetFixedRotation(flag bool) {
	b.fixedRotation = flag
	b.w = 0
	b.ResetMassData()
}

// ShouldCollide is false when neither body is dynamic or a joint between them disables collision.
func (b *Body) ShouldCollide(other *Body) bool {
	if b.bodyType != BODY_DYNAMIC && other.bodyType != BODY_DYNAMIC {
		return false
	}

	for _, constraint := range b.constraints {
		if constraint.Other(b) == other && !constraint.collideBodies {
			return false
		}
	}
	return true
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * (b.m*b.v.Dot(b.v) + b.i*b.w*b.w)
}

func (b *Body) synchronizeTransform() {
	b.xf.Q = NewRot(b.sweep.A)
	b.xf.P = b.sweep.C.Sub(b.xf.Q.Rotate(b.sweep.LocalCenter))
}

// synchronizeFixtures moves the proxies to cover the motion from the start to the end of the sweep.
func (b *Body) synchronizeFixtures() {
	xf1 := Transform{Q: NewRot(b.sweep.A0)}
	xf1.P = b.sweep.C0.Sub(xf1.Q.Rotate(b.sweep.LocalCenter))

	si := b.world.contactManager.si
	for _, fixture := range b.fixtures {
		fixture.synchronize(si, xf1, b.xf)
	}
}

// advance moves the body to time t of its sweep and makes that the new start of the sweep.
func (b *Body) advance(t float64) {
	b.sweep.Advance(t)
	b.sweep.C = b.sweep.C0
	b.sweep.A = b.sweep.A0
	b.synchronizeTransform()
}
