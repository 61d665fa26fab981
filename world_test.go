package physics

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

const timeStepHz = 1.0 / 60.0

func addBody(world *World, bodyType int, pos Vector, shape Shape, density float64) (*Body, *Fixture) {
	body := world.CreateBody(NewBodyDef(bodyType, pos))
	fixture := body.CreateFixture(NewFixtureDef(shape, density))
	return body, fixture
}

// addGround adds a static box whose top face is at y = 0.
func addGround(world *World) *Body {
	ground, _ := addBody(world, BODY_STATIC, Vector{0, -0.5}, NewBox(20, 0.5), 0)
	return ground
}

func stepN(world *World, n int) {
	for i := 0; i < n; i++ {
		world.Step(timeStepHz, 8, 3)
	}
}

type recordingListener struct {
	begin, end, preSolve, postSolve int
	normalImpulse                   float64
}

func (l *recordingListener) BeginContact(c *Contact) {
	l.begin++
}

func (l *recordingListener) EndContact(c *Contact) {
	l.end++
}

func (l *recordingListener) PreSolve(c *Contact, oldManifold *Manifold) {
	l.preSolve++
}

func (l *recordingListener) PostSolve(c *Contact, impulse *ContactImpulse) {
	l.postSolve++
	for i := 0; i < impulse.Count; i++ {
		l.normalImpulse = math.Max(l.normalImpulse, impulse.NormalImpulses[i])
	}
}

func TestWorld_CircleComesToRest(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	addGround(world)
	circle, _ := addBody(world, BODY_DYNAMIC, Vector{0, 10}, NewCircle(1, Vector{}), 1)

	stepN(world, 300)

	y := circle.Position().Y
	separation := y - 1 - POLYGON_RADIUS
	if separation < -1.5*LINEAR_SLOP || separation > LINEAR_SLOP {
		t.Errorf("circle rests at %v, separation %v", y, separation)
	}
	if circle.LinearVelocity().Length() > 1e-3 {
		t.Errorf("circle still moving at %v", circle.LinearVelocity())
	}
	if circle.IsAwake() {
		t.Error("a resting circle should fall asleep")
	}
}

func TestWorld_StaticBodiesNeverContact(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	addBody(world, BODY_STATIC, Vector{0, 0}, NewBox(1, 1), 0)
	addBody(world, BODY_STATIC, Vector{0.5, 0.5}, NewBox(1, 1), 0)
	kinematic, _ := addBody(world, BODY_KINEMATIC, Vector{0, 0.2}, NewCircle(1, Vector{}), 0)
	kinematic.SetLinearVelocity(Vector{1, 0})

	stepN(world, 10)

	if world.ContactCount() != 0 {
		t.Errorf("expected no contacts, got %d", world.ContactCount())
	}
}

func launchAtEdge(world *World, bullet bool) *Body {
	edge := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	edge.CreateFixture(NewFixtureDef(NewSegment(Vector{-5, 0}, Vector{5, 0}), 0))

	def := NewBodyDef(BODY_DYNAMIC, Vector{0, 5})
	def.Bullet = bullet
	def.LinearVelocity = Vector{0, -500}
	body := world.CreateBody(def)
	body.CreateFixture(NewFixtureDef(NewCircle(0.25, Vector{}), 1))
	return body
}

func TestWorld_BulletDoesNotTunnel(t *testing.T) {
	world := NewWorld(Vector{})
	bullet := launchAtEdge(world, true)

	for i := 0; i < 10; i++ {
		world.Step(timeStepHz, 8, 3)
		if bullet.Position().Y <= 0 {
			t.Fatalf("bullet tunneled through the edge on step %d: %v", i, bullet.Position())
		}
	}
}

func TestWorld_FastBodyTunnels(t *testing.T) {
	world := NewWorld(Vector{})
	body := launchAtEdge(world, false)

	stepN(world, 10)

	if body.Position().Y >= 0 {
		t.Errorf("a fast non-bullet should pass through a thin edge, ended at %v", body.Position())
	}
}

func TestWorld_ContinuousNonBullets(t *testing.T) {
	settings := DefaultSettings()
	settings.ContinuousNonBullets = true
	world := NewWorldWithSettings(Vector{}, settings)
	body := launchAtEdge(world, false)

	stepN(world, 10)

	if body.Position().Y <= 0 {
		t.Errorf("continuous non-bullets should not tunnel, ended at %v", body.Position())
	}
}

func TestWorld_DestroyFixtureRemovesContact(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	listener := &recordingListener{}
	world.SetContactListener(listener)

	ground := addGround(world)
	box, fixture := addBody(world, BODY_DYNAMIC, Vector{0, 0.49}, NewBox(0.5, 0.5), 1)

	stepN(world, 2)
	if world.ContactCount() != 1 || len(box.ContactEdges()) != 1 || len(ground.ContactEdges()) != 1 {
		t.Fatalf("expected one contact, got %d", world.ContactCount())
	}

	box.DestroyFixture(fixture)

	if world.ContactCount() != 0 {
		t.Errorf("contact still in the world")
	}
	if len(box.ContactEdges()) != 0 || len(ground.ContactEdges()) != 0 {
		t.Errorf("contact still in the body edge lists")
	}
	if listener.end != 1 {
		t.Errorf("destroying a touching contact should end it, got %d EndContact calls", listener.end)
	}
	if box.Mass() != 1 {
		t.Errorf("a dynamic body without fixtures has unit mass, got %v", box.Mass())
	}
}

func TestWorld_RestingBoxImpulses(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	world.SetAllowSleeping(false)
	addGround(world)
	box, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0.5}, NewBox(0.5, 0.5), 1)

	total := func() float64 {
		sum := 0.0
		world.EachContact(func(c *Contact) {
			m := c.Manifold()
			for i := 0; i < m.PointCount; i++ {
				sum += m.Points[i].NormalImpulse
			}
		})
		return sum
	}

	stepN(world, 150)
	first := total()
	stepN(world, 50)
	second := total()

	// the contact carries the weight of the box
	weight := box.Mass() * 10 * timeStepHz
	if math.Abs(first-weight) > 0.05*weight || math.Abs(second-weight) > 0.05*weight {
		t.Errorf("impulses %v and %v, want %v", first, second, weight)
	}
	if math.Abs(first-second) > 0.01*weight {
		t.Errorf("impulses drift from %v to %v", first, second)
	}

	world.EachContact(func(c *Contact) {
		wm := c.WorldManifold()
		for i := 0; i < c.Manifold().PointCount; i++ {
			if wm.Separations[i] < -2*LINEAR_SLOP || wm.Separations[i] > LINEAR_SLOP {
				t.Errorf("separation %v", wm.Separations[i])
			}
		}
	})
}

func TestWorld_StackDoesNotGainEnergy(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	world.SetAllowSleeping(false)
	addGround(world)

	var boxes []*Body
	for i := 0; i < 4; i++ {
		box, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0.5 + float64(i)}, NewBox(0.5, 0.5), 1)
		boxes = append(boxes, box)
	}

	energy := func() float64 {
		e := 0.0
		for _, b := range boxes {
			e += b.KineticEnergy()
		}
		return e
	}

	stepN(world, 60)
	last := energy()
	for i := 0; i < 240; i++ {
		world.Step(timeStepHz, 8, 3)
		e := energy()
		if e > last+1e-4 {
			t.Fatalf("kinetic energy rose from %v to %v on step %d", last, e, i)
		}
		last = e
	}

	for i, b := range boxes {
		if math.Abs(b.Position().X) > 0.01 {
			t.Errorf("box %d slid to %v", i, b.Position())
		}
	}
}

func TestWorld_Islands(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	ground := addGround(world)

	a, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0.5}, NewBox(0.5, 0.5), 1)
	b, _ := addBody(world, BODY_DYNAMIC, Vector{0, 1.5}, NewBox(0.5, 0.5), 1)
	c, _ := addBody(world, BODY_DYNAMIC, Vector{-3, 5}, NewCircle(0.5, Vector{}), 1)
	d, _ := addBody(world, BODY_DYNAMIC, Vector{5, 0.5}, NewBox(0.5, 0.5), 1)
	world.CreateJoint(NewPinJoint(a, c, Vector{}, Vector{}))

	stepN(world, 1)

	islands := map[*Body][]int{}
	index := 0
	world.eachIsland(func(island *Island) {
		for _, body := range island.bodies {
			islands[body] = append(islands[body], index)
		}
		index++
	})

	if index != 2 {
		t.Fatalf("expected 2 islands, got %d", index)
	}
	if islands[a][0] != islands[b][0] {
		t.Error("touching boxes should share an island")
	}
	if islands[a][0] != islands[c][0] {
		t.Error("jointed bodies should share an island")
	}
	if islands[a][0] == islands[d][0] {
		t.Error("bodies only connected through a static body should not share an island")
	}
	if len(islands[ground]) != 2 {
		t.Errorf("the ground anchors both islands, found in %v", islands[ground])
	}
}

func TestWorld_SleepAndWake(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	addGround(world)
	a, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0.5}, NewBox(0.5, 0.5), 1)
	b, _ := addBody(world, BODY_DYNAMIC, Vector{0, 1.5}, NewBox(0.5, 0.5), 1)

	stepN(world, 120)
	if a.IsAwake() || b.IsAwake() {
		t.Fatal("resting stack should sleep")
	}

	pos := b.Position()
	stepN(world, 10)
	if b.Position() != pos {
		t.Error("sleeping bodies should not move")
	}

	b.ApplyForceToCenter(Vector{0, 100})
	if !b.IsAwake() {
		t.Error("a force wakes the body")
	}
	stepN(world, 1)
	if !a.IsAwake() {
		t.Error("the island wakes as a whole")
	}
}

func TestWorld_ContactListener(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	listener := &recordingListener{}
	world.SetContactListener(listener)
	addGround(world)
	addBody(world, BODY_DYNAMIC, Vector{0, 2}, NewCircle(0.5, Vector{}), 1)

	stepN(world, 120)

	if listener.begin != 1 {
		t.Errorf("BeginContact called %d times", listener.begin)
	}
	if listener.preSolve == 0 || listener.postSolve == 0 {
		t.Errorf("PreSolve %d, PostSolve %d", listener.preSolve, listener.postSolve)
	}
	if listener.normalImpulse <= 0 {
		t.Error("PostSolve should report the landing impulse")
	}
}

type disablingListener struct {
	recordingListener
}

func (l *disablingListener) PreSolve(c *Contact, oldManifold *Manifold) {
	c.SetEnabled(false)
}

func TestWorld_DisabledContactIsNotSolved(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	world.SetContactListener(&disablingListener{})
	addGround(world)
	body, _ := addBody(world, BODY_DYNAMIC, Vector{0, 1}, NewCircle(0.5, Vector{}), 1)

	stepN(world, 60)

	if body.Position().Y > -1 {
		t.Errorf("a body whose contacts are disabled falls through, got %v", body.Position())
	}
}

func TestWorld_Sensor(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	listener := &recordingListener{}
	world.SetContactListener(listener)

	sensor := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	def := NewFixtureDef(NewBox(2, 0.5), 0)
	def.IsSensor = true
	sensor.CreateFixture(def)

	body, _ := addBody(world, BODY_DYNAMIC, Vector{0, 2}, NewCircle(0.25, Vector{}), 1)

	stepN(world, 90)

	if body.Position().Y > -2 {
		t.Errorf("sensors don't collide, body at %v", body.Position())
	}
	if listener.begin != 1 || listener.end != 1 {
		t.Errorf("begin %d, end %d", listener.begin, listener.end)
	}
	if listener.preSolve != 0 {
		t.Error("sensor contacts are not solved")
	}
}

func TestWorld_Filtering(t *testing.T) {
	world := NewWorld(Vector{})
	_, fa := addBody(world, BODY_DYNAMIC, Vector{0, 0}, NewBox(0.5, 0.5), 1)
	_, fb := addBody(world, BODY_DYNAMIC, Vector{0.5, 0}, NewBox(0.5, 0.5), 1)

	filter := DefaultFilter()
	filter.Group = -1
	fa.SetFilterData(filter)
	fb.SetFilterData(filter)

	stepN(world, 2)
	if world.ContactCount() != 0 {
		t.Fatalf("same negative group should never collide, got %d contacts", world.ContactCount())
	}

	fb.SetFilterData(DefaultFilter())
	stepN(world, 1)
	if world.ContactCount() != 1 {
		t.Errorf("refiltered fixtures should collide, got %d contacts", world.ContactCount())
	}

	filter = DefaultFilter()
	filter.Mask = 0
	fa.SetFilterData(filter)
	stepN(world, 1)
	if world.ContactCount() != 0 {
		t.Errorf("an empty mask drops the contact, got %d contacts", world.ContactCount())
	}
}

type rejectAllFilter struct{}

func (rejectAllFilter) ShouldCollide(a, b *Fixture) bool {
	return false
}

func TestWorld_ContactFilter(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	world.SetContactFilter(rejectAllFilter{})
	addGround(world)
	body, _ := addBody(world, BODY_DYNAMIC, Vector{0, 1}, NewCircle(0.5, Vector{}), 1)

	stepN(world, 60)

	if world.ContactCount() != 0 || body.Position().Y > -1 {
		t.Errorf("filtered pairs never collide: %d contacts, body at %v", world.ContactCount(), body.Position())
	}
}

func TestWorld_JointDisablesCollision(t *testing.T) {
	world := NewWorld(Vector{})
	a, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0}, NewBox(0.5, 0.5), 1)
	b, _ := addBody(world, BODY_DYNAMIC, Vector{0.5, 0}, NewBox(0.5, 0.5), 1)

	stepN(world, 1)
	if world.ContactCount() != 1 {
		t.Fatalf("expected a contact, got %d", world.ContactCount())
	}

	joint := NewPivotJoint(a, b, Vector{0.25, 0})
	joint.SetCollideBodies(false)
	world.CreateJoint(joint)

	stepN(world, 1)
	if world.ContactCount() != 0 {
		t.Errorf("the joint should remove the contact, got %d", world.ContactCount())
	}

	world.DestroyJoint(joint)
	stepN(world, 1)
	if world.ContactCount() != 1 {
		t.Errorf("destroying the joint restores the contact, got %d", world.ContactCount())
	}
}

type goodbyeListener struct {
	fixtures, joints int
}

func (l *goodbyeListener) SayGoodbyeFixture(fixture *Fixture) {
	l.fixtures++
}

func (l *goodbyeListener) SayGoodbyeJoint(constraint *Constraint) {
	l.joints++
}

func TestWorld_DestroyBody(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	listener := &goodbyeListener{}
	world.SetDestructionListener(listener)

	ground := addGround(world)
	body, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0.5}, NewBox(0.5, 0.5), 1)
	body.CreateFixture(NewFixtureDef(NewCircle(0.5, Vector{0, 0.5}), 1))
	joint := world.CreateJoint(NewPinJoint(ground, body, Vector{0, 2}, Vector{}))

	stepN(world, 2)
	proxies := world.ProxyCount()
	id := body.ID()
	jointID := joint.ID()

	world.DestroyBody(body)

	if listener.fixtures != 2 || listener.joints != 1 {
		t.Errorf("goodbyes: %d fixtures, %d joints", listener.fixtures, listener.joints)
	}
	if world.BodyCount() != 1 || world.JointCount() != 0 || world.ContactCount() != 0 {
		t.Errorf("counts: %d bodies, %d joints, %d contacts", world.BodyCount(), world.JointCount(), world.ContactCount())
	}
	if world.ProxyCount() != proxies-2 {
		t.Errorf("proxies: %d, want %d", world.ProxyCount(), proxies-2)
	}
	if world.Body(id) != nil || world.Joint(jointID) != nil {
		t.Error("ids of destroyed objects should not resolve")
	}
	if len(ground.Constraints()) != 0 || len(ground.ContactEdges()) != 0 {
		t.Error("the ground still references the destroyed body")
	}

	// the slot is reused under a new generation
	other := world.CreateBody(NewBodyDef(BODY_DYNAMIC, Vector{}))
	if other.ID() == id || world.Body(id) != nil || world.Body(other.ID()) != other {
		t.Error("stale id resolved after slot reuse")
	}
}

type lockingListener struct {
	recordingListener
	world    *World
	panicked bool
}

func (l *lockingListener) BeginContact(c *Contact) {
	defer func() {
		l.panicked = recover() != nil
	}()
	l.world.CreateBody(NewBodyDef(BODY_DYNAMIC, Vector{}))
}

func TestWorld_LockedDuringStep(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	listener := &lockingListener{world: world}
	world.SetContactListener(listener)
	addGround(world)
	addBody(world, BODY_DYNAMIC, Vector{0, 0.5}, NewBox(0.5, 0.5), 1)

	stepN(world, 2)

	if !listener.panicked {
		t.Error("creating a body during a step should panic")
	}
	if world.IsLocked() {
		t.Error("the world should unlock after the step")
	}
	if world.BodyCount() != 2 {
		t.Errorf("expected 2 bodies, got %d", world.BodyCount())
	}
}

func TestWorld_QueryAABB(t *testing.T) {
	world := NewWorld(Vector{})
	for i := 0; i < 5; i++ {
		addBody(world, BODY_STATIC, Vector{float64(i) * 3, 0}, NewBox(1, 1), 0)
	}

	var found []*Fixture
	world.QueryAABB(func(fixture *Fixture) bool {
		found = append(found, fixture)
		return true
	}, NewBB(0.5, -0.5, 3.5, 0.5))

	if len(found) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(found))
	}
	for _, f := range found {
		x := f.Body().Position().X
		if x != 0 && x != 3 {
			t.Errorf("unexpected fixture at %v", x)
		}
	}

	count := 0
	world.QueryAABB(func(fixture *Fixture) bool {
		count++
		return false
	}, NewBB(-10, -10, 20, 10))
	if count != 1 {
		t.Errorf("returning false should end the query, got %d calls", count)
	}
}

func TestWorld_RayCast(t *testing.T) {
	world := NewWorld(Vector{})
	near, _ := addBody(world, BODY_STATIC, Vector{5, 0}, NewBox(1, 1), 0)
	addBody(world, BODY_STATIC, Vector{10, 0}, NewBox(1, 1), 0)

	var closest *Fixture
	var point, normal Vector
	world.RayCast(func(fixture *Fixture, p, n Vector, fraction float64) float64 {
		closest = fixture
		point = p
		normal = n
		return fraction
	}, Vector{0, 0}, Vector{20, 0})

	if closest == nil || closest.Body() != near {
		t.Fatal("expected the near box")
	}
	if !point.Near(Vector{4, 0}, 1e-9) || !normal.Near(Vector{-1, 0}, 1e-9) {
		t.Errorf("hit at %v with normal %v", point, normal)
	}

	hits := 0
	world.RayCast(func(fixture *Fixture, p, n Vector, fraction float64) float64 {
		hits++
		return -1
	}, Vector{0, 0}, Vector{20, 0})
	if hits != 2 {
		t.Errorf("ignoring hits should visit both boxes, got %d", hits)
	}

	hits = 0
	world.RayCast(func(fixture *Fixture, p, n Vector, fraction float64) float64 {
		hits++
		return 0
	}, Vector{0, 0}, Vector{20, 0})
	if hits != 1 {
		t.Errorf("returning 0 ends the cast, got %d hits", hits)
	}
}

func TestWorld_JointsWithoutDynamicBodies(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	ground := addGround(world)

	def := NewBodyDef(BODY_KINEMATIC, Vector{0, 2})
	def.LinearVelocity = Vector{1, 0}
	platform := world.CreateBody(def)
	platform.CreateFixture(NewFixtureDef(NewCircle(0.5, Vector{}), 1))

	def = NewBodyDef(BODY_KINEMATIC, Vector{3, 2})
	def.LinearVelocity = Vector{0, 1}
	lift := world.CreateBody(def)

	// none of these joints has a body it can move
	world.CreateJoint(NewPinJoint(ground, platform, Vector{}, Vector{}))
	world.CreateJoint(NewPivotJoint(ground, platform, Vector{0, 2}))
	world.CreateJoint(NewSlideJoint(ground, platform, Vector{}, Vector{}, 0, 1))
	world.CreateJoint(NewDampedSpring(ground, platform, Vector{}, Vector{}, 1, 10, 1))
	world.CreateJoint(NewPinJoint(platform, lift, Vector{}, Vector{}))
	world.CreateJoint(NewPivotJoint(platform, lift, Vector{1, 2}))

	stepN(world, 60)

	if !platform.LinearVelocity().Near(Vector{1, 0}, 1e-12) || !lift.LinearVelocity().Near(Vector{0, 1}, 1e-12) {
		t.Errorf("joints changed kinematic velocities: %v, %v", platform.LinearVelocity(), lift.LinearVelocity())
	}
	if !platform.Position().Near(Vector{1, 2}, 1e-9) || !lift.Position().Near(Vector{3, 3}, 1e-9) {
		t.Errorf("kinematic bodies should follow their velocity, at %v and %v", platform.Position(), lift.Position())
	}
	world.EachJoint(func(c *Constraint) {
		if c.Impulse() != 0 {
			t.Errorf("%T applied an impulse of %v", c.Class, c.Impulse())
		}
	})
}

func TestWorld_SetActive(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	addGround(world)
	body, _ := addBody(world, BODY_DYNAMIC, Vector{0, 0.5}, NewBox(0.5, 0.5), 1)

	stepN(world, 2)
	if world.ContactCount() != 1 {
		t.Fatalf("expected a contact, got %d", world.ContactCount())
	}

	body.SetActive(false)
	if world.ContactCount() != 0 || world.ProxyCount() != 1 {
		t.Errorf("inactive: %d contacts, %d proxies", world.ContactCount(), world.ProxyCount())
	}

	pos := body.Position()
	stepN(world, 10)
	if body.Position() != pos {
		t.Error("inactive bodies are not simulated")
	}

	body.SetActive(true)
	stepN(world, 1)
	if world.ContactCount() != 1 {
		t.Errorf("reactivated body should touch the ground again, got %d contacts", world.ContactCount())
	}
}

func TestWorld_SetType(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	addGround(world)
	body, _ := addBody(world, BODY_DYNAMIC, Vector{0, 3}, NewBox(0.5, 0.5), 1)

	stepN(world, 5)
	body.SetType(BODY_STATIC)
	if body.Mass() != 0 || body.LinearVelocity() != (Vector{}) {
		t.Errorf("static body has mass %v and velocity %v", body.Mass(), body.LinearVelocity())
	}

	pos := body.Position()
	stepN(world, 10)
	if body.Position() != pos {
		t.Error("static bodies don't move")
	}

	body.SetType(BODY_DYNAMIC)
	if !near(body.Mass(), 1) {
		t.Errorf("mass %v", body.Mass())
	}
	stepN(world, 120)
	if body.Position().Y > 0.6 {
		t.Errorf("dynamic again, the body should land, at %v", body.Position())
	}
}

func trace(world *World, steps int) string {
	var sb strings.Builder
	for i := 0; i < steps; i++ {
		world.Step(timeStepHz, 8, 3)
		world.EachBody(func(b *Body) {
			p := b.Position()
			fmt.Fprintf(&sb, "%d %v %.12f %.12f %.12f\n", i, b.ID(), p.X, p.Y, b.Angle())
		})
	}
	return sb.String()
}

func pyramid() *World {
	world := NewWorld(Vector{0, -10})
	addGround(world)
	for row := 0; row < 5; row++ {
		for col := 0; col <= row; col++ {
			x := float64(col) - 0.5*float64(row)
			y := 0.5 + float64(4-row)*1.01
			addBody(world, BODY_DYNAMIC, Vector{x * 1.05, y}, NewBox(0.5, 0.5), 1)
		}
	}
	def := NewBodyDef(BODY_DYNAMIC, Vector{-8, 3})
	def.LinearVelocity = Vector{40, 0}
	def.Bullet = true
	ball := world.CreateBody(def)
	ball.CreateFixture(NewFixtureDef(NewCircle(0.3, Vector{}), 5))
	return world
}

func TestWorld_Deterministic(t *testing.T) {
	a := trace(pyramid(), 180)
	b := trace(pyramid(), 180)

	if a != b {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(a),
			B:        difflib.SplitLines(b),
			FromFile: "first",
			ToFile:   "second",
			Context:  1,
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Fatalf("identical worlds diverged:\n%s", diff)
	}
}
