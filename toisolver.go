package physics

import "math"

// TOISolver pushes a body that was moved back to its time of impact out of the static and
// kinematic shapes it touches. Only the TOI body moves; the others are treated as infinitely
// heavy.
type TOISolver struct {
	settings    *Settings
	constraints []ContactConstraint
	toiBody     *Body
}

func (s *TOISolver) Initialize(contacts []*Contact, toiBody *Body, settings *Settings) {
	s.settings = settings
	s.toiBody = toiBody
	s.constraints = s.constraints[:0]

	for _, contact := range contacts {
		fixtureA := contact.fixtureA
		fixtureB := contact.fixtureB
		manifold := &contact.manifold

		assert(manifold.PointCount > 0, "Solving a contact without points")

		s.constraints = append(s.constraints, ContactConstraint{})
		cc := &s.constraints[len(s.constraints)-1]
		cc.bodyA = fixtureA.body
		cc.bodyB = fixtureB.body
		cc.localNormal = manifold.LocalNormal
		cc.localPoint = manifold.LocalPoint
		cc.manifoldType = manifold.Type
		cc.pointCount = manifold.PointCount
		cc.radiusA = fixtureA.shape.Radius()
		cc.radiusB = fixtureB.shape.Radius()

		for j := 0; j < cc.pointCount; j++ {
			cc.points[j].localPoint = manifold.Points[j].LocalPoint
		}
	}
}

// Solve runs one iteration. It reports true once the deepest overlap is within one and a half
// times LINEAR_SLOP.
func (s *TOISolver) Solve(baumgarte float64) bool {
	minSeparation := 0.0

	for i := range s.constraints {
		cc := &s.constraints[i]

		var mA, iA, mB, iB float64
		if cc.bodyA == s.toiBody {
			mA, iA = cc.bodyA.m_inv, cc.bodyA.i_inv
		}
		if cc.bodyB == s.toiBody {
			mB, iB = cc.bodyB.m_inv, cc.bodyB.i_inv
		}

		separation := solveContactPosition(cc, baumgarte, s.settings.MaxLinearCorrection, mA, iA, mB, iB)
		minSeparation = math.Min(minSeparation, separation)
	}

	return minSeparation >= -1.5*LINEAR_SLOP
}
