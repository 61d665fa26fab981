package physics

// ContactImpulse reports the impulses the solver applied at each manifold point. It is handed
// to PostSolve, for example to break bodies that were hit too hard.
type ContactImpulse struct {
	NormalImpulses  [MAX_MANIFOLD_POINTS]float64
	TangentImpulses [MAX_MANIFOLD_POINTS]float64
	Count           int
}

// ContactListener receives contact events. Callbacks run inside Step while the world is
// locked: bodies, fixtures and joints must not be created or destroyed from them.
type ContactListener interface {
	// Called when two fixtures begin to touch.
	BeginContact(contact *Contact)
	// Called when two fixtures cease to touch.
	EndContact(contact *Contact)
	// Called after a touching contact is updated and before it is solved. The contact can be
	// disabled for this step with SetEnabled(false).
	PreSolve(contact *Contact, oldManifold *Manifold)
	// Called after the contact was solved.
	PostSolve(contact *Contact, impulse *ContactImpulse)
}

// DestructionListener is told about fixtures and joints that are destroyed implicitly because
// their body was destroyed.
type DestructionListener interface {
	SayGoodbyeFixture(fixture *Fixture)
	SayGoodbyeJoint(constraint *Constraint)
}

// ContactFilter decides whether two fixtures may create a contact.
type ContactFilter interface {
	ShouldCollide(fixtureA, fixtureB *Fixture) bool
}

// DefaultContactFilter compares filter data. Fixtures in the same non zero group always collide
// when the group is positive and never when it is negative. Otherwise each category must be in
// the other fixture's mask.
type DefaultContactFilter struct{}

func (DefaultContactFilter) ShouldCollide(fixtureA, fixtureB *Fixture) bool {
	return fixtureA.filter.ShouldCollide(fixtureB.filter)
}

// QueryCallback is called for each fixture whose fat box overlaps the query box. Return false
// to end the query.
type QueryCallback func(fixture *Fixture) bool

// RayCastCallback is called for each fixture the ray hits. The returned value controls the rest
// of the cast:
//   -1 ignores this fixture and continues
//   0 ends the cast
//   fraction clips the ray to this hit
//   1 continues without clipping
type RayCastCallback func(fixture *Fixture, point, normal Vector, fraction float64) float64
