package physics

// Filter holds contact filtering data.
type Filter struct {
	// A bitmask of user definable categories that this fixture belongs to.
	Categories uint16
	// A bitmask of categories this fixture accepts collisions with.
	Mask uint16
	// Fixtures with the same positive group always collide, with the same negative group never.
	// Zero means no group.
	Group int16
}

func DefaultFilter() Filter {
	return Filter{Categories: 0x0001, Mask: 0xFFFF, Group: 0}
}

func (a Filter) ShouldCollide(b Filter) bool {
	if a.Group == b.Group && a.Group != 0 {
		return a.Group > 0
	}
	return a.Mask&b.Categories != 0 && a.Categories&b.Mask != 0
}

// FixtureDef describes a fixture to attach to a body. The shape is cloned.
type FixtureDef struct {
	Shape       Shape
	Friction    float64
	Restitution float64
	Density     float64
	IsSensor    bool
	Filter      Filter
	UserData    interface{}
}

func NewFixtureDef(shape Shape, density float64) *FixtureDef {
	return &FixtureDef{
		Shape:    shape,
		Friction: 0.2,
		Density:  density,
		Filter:   DefaultFilter(),
	}
}

// Fixture binds a shape to a body with material properties and filtering.
type Fixture struct {
	body  *Body
	shape Shape

	density     float64
	friction    float64
	restitution float64
	sensor      bool
	filter      Filter

	proxyId int
	hashid  HashValue

	UserData interface{}
}

func newFixture(body *Body, def *FixtureDef, hashid HashValue) *Fixture {
	assert(def.Shape != nil, "Fixture definition has no shape")
	assert(def.Density >= 0, "Fixture density must not be negative")
	assert(def.Friction >= 0, "Fixture friction must not be negative")
	return &Fixture{
		body:        body,
		shape:       def.Shape.Clone(),
		density:     def.Density,
		friction:    def.Friction,
		restitution: def.Restitution,
		sensor:      def.IsSensor,
		filter:      def.Filter,
		proxyId:     nullNode,
		hashid:      hashid,
		UserData:    def.UserData,
	}
}

func (fixture *Fixture) Body() *Body {
	return fixture.body
}

func (fixture *Fixture) Shape() Shape {
	return fixture.shape
}

func (fixture *Fixture) Density() float64 {
	return fixture.density
}

// SetDensity does not change the body mass until ResetMassData is called.
func (fixture *Fixture) SetDensity(density float64) {
	assert(density >= 0, "Fixture density must not be negative")
	fixture.density = density
}

func (fixture *Fixture) Friction() float64 {
	return fixture.friction
}

// SetFriction does not change existing contacts.
func (fixture *Fixture) SetFriction(friction float64) {
	fixture.friction = friction
}

func (fixture *Fixture) Restitution() float64 {
	return fixture.restitution
}

// SetRestitution does not change existing contacts.
func (fixture *Fixture) SetRestitution(restitution float64) {
	fixture.restitution = restitution
}

func (fixture *Fixture) IsSensor() bool {
	return fixture.sensor
}

func (fixture *Fixture) SetSensor(sensor bool) {
	if sensor != fixture.sensor {
		fixture.body.SetAwake(true)
		fixture.sensor = sensor
	}
}

func (fixture *Fixture) FilterData() Filter {
	return fixture.filter
}

// SetFilterData flags the fixture's contacts for filtering on the next step and re-runs the
// broad-phase for it so that newly allowed pairs are found.
func (fixture *Fixture) SetFilterData(filter Filter) {
	fixture.filter = filter
	fixture.Refilter()
}

func (fixture *Fixture) Refilter() {
	body := fixture.body
	if body == nil {
		return
	}

	for _, edge := range body.contactEdges {
		contact := edge.Contact
		if contact.fixtureA == fixture || contact.fixtureB == fixture {
			contact.flagForFiltering()
		}
	}

	world := body.world
	if world == nil || fixture.proxyId == nullNode {
		return
	}
	world.contactManager.si.TouchProxy(fixture.proxyId)
}

func (fixture *Fixture) TestPoint(p Vector) bool {
	return fixture.shape.TestPoint(fixture.body.xf, p)
}

func (fixture *Fixture) RayCast(input RayCastInput) (RayCastOutput, bool) {
	return fixture.shape.RayCast(input, fixture.body.xf)
}

func (fixture *Fixture) GetMassData() MassData {
	return fixture.shape.ComputeMass(fixture.density)
}

// BB is the fat box the broad-phase stores for this fixture.
func (fixture *Fixture) BB() BB {
	assert(fixture.proxyId != nullNode, "Fixture has no proxy")
	return fixture.body.world.contactManager.si.GetFatBB(fixture.proxyId)
}

func (fixture *Fixture) createProxy(si *SpatialIndex, xf Transform) {
	assert(fixture.proxyId == nullNode, "Fixture already has a proxy")
	fixture.proxyId = si.CreateProxy(fixture.shape.ComputeBB(xf), fixture)
}

func (fixture *Fixture) destroyProxy(si *SpatialIndex) {
	if fixture.proxyId == nullNode {
		return
	}
	si.DestroyProxy(fixture.proxyId)
	fixture.proxyId = nullNode
}

// synchronize moves the proxy to cover the swept shape from xf1 to xf2.
func (fixture *Fixture) synchronize(si *SpatialIndex, xf1, xf2 Transform) {
	if fixture.proxyId == nullNode {
		return
	}

	bb1 := fixture.shape.ComputeBB(xf1)
	bb2 := fixture.shape.ComputeBB(xf2)

	displacement := xf2.P.Sub(xf1.P)
	si.MoveProxy(fixture.proxyId, bb1.Merge(bb2), displacement)
}
