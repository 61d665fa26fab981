package physics

import "math"

// MixFriction is the geometric mean, so a frictionless fixture makes any contact frictionless.
func MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

// MixRestitution takes the bouncier of the two, so a bouncy ball bounces on anything.
func MixRestitution(restitution1, restitution2 float64) float64 {
	return math.Max(restitution1, restitution2)
}

// Contact manages the contact between two fixtures whose fat boxes overlap. A contact exists
// for each overlapping pair, so it may have no points. The fixtures are ordered for the
// narrow-phase when the contact is created.
type Contact struct {
	id slotID

	fixtureA, fixtureB *Fixture

	manifold Manifold

	touching  bool
	enabled   bool
	filter    bool
	bulletHit bool
	island    bool

	// number of TOI events this step
	toiCount int

	friction    float64
	restitution float64

	UserData interface{}
}

func newContact(fixtureA, fixtureB *Fixture) *Contact {
	if needsSwap(fixtureA.shape, fixtureB.shape) {
		fixtureA, fixtureB = fixtureB, fixtureA
	}

	return &Contact{
		fixtureA:    fixtureA,
		fixtureB:    fixtureB,
		enabled:     true,
		friction:    MixFriction(fixtureA.friction, fixtureB.friction),
		restitution: MixRestitution(fixtureA.restitution, fixtureB.restitution),
	}
}

func (c *Contact) FixtureA() *Fixture {
	return c.fixtureA
}

func (c *Contact) FixtureB() *Fixture {
	return c.fixtureB
}

func (c *Contact) Manifold() *Manifold {
	return &c.manifold
}

// WorldManifold computes the manifold in world coordinates from the current body transforms.
func (c *Contact) WorldManifold() WorldManifold {
	var wm WorldManifold
	bodyA := c.fixtureA.body
	bodyB := c.fixtureB.body
	wm.Initialize(&c.manifold, bodyA.xf, c.fixtureA.shape.Radius(), bodyB.xf, c.fixtureB.shape.Radius())
	return wm
}

func (c *Contact) IsTouching() bool {
	return c.touching
}

// SetEnabled disables the contact for the current step from a PreSolve callback. The contact
// is re-enabled every time it is updated.
func (c *Contact) SetEnabled(flag bool) {
	c.enabled = flag
}

func (c *Contact) IsEnabled() bool {
	return c.enabled
}

func (c *Contact) Friction() float64 {
	return c.friction
}

// SetFriction overrides the mixed friction, typically from PreSolve. It persists until reset.
func (c *Contact) SetFriction(friction float64) {
	c.friction = friction
}

func (c *Contact) ResetFriction() {
	c.friction = MixFriction(c.fixtureA.friction, c.fixtureB.friction)
}

func (c *Contact) Restitution() float64 {
	return c.restitution
}

func (c *Contact) SetRestitution(restitution float64) {
	c.restitution = restitution
}

func (c *Contact) ResetRestitution() {
	c.restitution = MixRestitution(c.fixtureA.restitution, c.fixtureB.restitution)
}

func (c *Contact) flagForFiltering() {
	c.filter = true
}

func (c *Contact) other(body *Body) *Body {
	if c.fixtureA.body == body {
		return c.fixtureB.body
	}
	return c.fixtureA.body
}

// update recomputes the manifold, carries impulses over to matching points and reports
// touching transitions to the listener.
func (c *Contact) update(listener ContactListener) {
	oldManifold := c.manifold

	// re-enable this contact
	c.enabled = true

	touching := false
	wasTouching := c.touching

	sensor := c.fixtureA.sensor || c.fixtureB.sensor

	bodyA := c.fixtureA.body
	bodyB := c.fixtureB.body
	xfA := bodyA.xf
	xfB := bodyB.xf

	if sensor {
		// sensors don't generate manifolds
		touching = TestOverlap(c.fixtureA.shape, xfA, c.fixtureB.shape, xfB)
		c.manifold.PointCount = 0
	} else {
		Collide(&c.manifold, c.fixtureA.shape, xfA, c.fixtureB.shape, xfB)
		touching = c.manifold.PointCount > 0

		// match new points to old points by feature for warm starting
		for i := 0; i < c.manifold.PointCount; i++ {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0
			mp2.TangentImpulse = 0
			key := mp2.ID.Key()

			for j := 0; j < oldManifold.PointCount; j++ {
				mp1 := &oldManifold.Points[j]
				if mp1.ID.Key() == key {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bodyA.SetAwake(true)
			bodyB.SetAwake(true)
		}
	}

	c.touching = touching

	if listener == nil {
		return
	}

	if !wasTouching && touching {
		listener.BeginContact(c)
	}

	if wasTouching && !touching {
		listener.EndContact(c)
	}

	if !sensor && touching {
		listener.PreSolve(c, &oldManifold)
	}
}
