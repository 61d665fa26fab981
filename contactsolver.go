package physics

import "math"

type contactConstraintPoint struct {
	localPoint     Vector
	rA, rB         Vector
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

// ContactConstraint is the solver's working copy of a touching contact.
type ContactConstraint struct {
	points      [MAX_MANIFOLD_POINTS]contactConstraintPoint
	localNormal Vector
	localPoint  Vector
	normal      Vector
	// inverse of K, valid when the block solver is used
	normalMass Mat22
	K          Mat22

	bodyA, bodyB     *Body
	radiusA, radiusB float64

	manifoldType int
	friction     float64
	restitution  float64
	pointCount   int

	manifold *Manifold
}

// ContactSolver solves the contacts of one island with sequential impulses, and then pushes
// overlapping shapes apart in the position iterations.
type ContactSolver struct {
	settings    *Settings
	constraints []ContactConstraint
}

func (cs *ContactSolver) Initialize(step *timeStep, contacts []*Contact, settings *Settings) {
	cs.settings = settings
	cs.constraints = cs.constraints[:0]

	for _, contact := range contacts {
		fixtureA := contact.fixtureA
		fixtureB := contact.fixtureB
		radiusA := fixtureA.shape.Radius()
		radiusB := fixtureB.shape.Radius()
		bodyA := fixtureA.body
		bodyB := fixtureB.body
		manifold := &contact.manifold

		assert(manifold.PointCount > 0, "Solving a contact without points")

		var wm WorldManifold
		wm.Initialize(manifold, bodyA.xf, radiusA, bodyB.xf, radiusB)

		cs.constraints = append(cs.constraints, ContactConstraint{})
		cc := &cs.constraints[len(cs.constraints)-1]
		cc.bodyA = bodyA
		cc.bodyB = bodyB
		cc.manifold = manifold
		cc.normal = wm.Normal
		cc.pointCount = manifold.PointCount
		cc.friction = contact.friction
		cc.restitution = contact.restitution
		cc.localNormal = manifold.LocalNormal
		cc.localPoint = manifold.LocalPoint
		cc.radiusA = radiusA
		cc.radiusB = radiusB
		cc.manifoldType = manifold.Type

		vA, wA := bodyA.v, bodyA.w
		vB, wB := bodyB.v, bodyB.w
		mA, iA := bodyA.m_inv, bodyA.i_inv
		mB, iB := bodyB.m_inv, bodyB.i_inv
		tangent := cc.normal.CrossScalar(1.0)

		for j := 0; j < cc.pointCount; j++ {
			mp := &manifold.Points[j]
			ccp := &cc.points[j]

			if step.warmStarting {
				ccp.normalImpulse = step.dtRatio * mp.NormalImpulse
				ccp.tangentImpulse = step.dtRatio * mp.TangentImpulse
			}
			ccp.localPoint = mp.LocalPoint

			ccp.rA = wm.Points[j].Sub(bodyA.sweep.C)
			ccp.rB = wm.Points[j].Sub(bodyB.sweep.C)

			rnA := ccp.rA.Cross(cc.normal)
			rnB := ccp.rB.Cross(cc.normal)
			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			if kNormal > EPSILON {
				ccp.normalMass = 1.0 / kNormal
			}

			rtA := ccp.rA.Cross(tangent)
			rtB := ccp.rB.Cross(tangent)
			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			if kTangent > EPSILON {
				ccp.tangentMass = 1.0 / kTangent
			}

			// setup a velocity bias for restitution
			dv := vB.Add(CrossScalar(wB, ccp.rB)).Sub(vA).Sub(CrossScalar(wA, ccp.rA))
			vRel := cc.normal.Dot(dv)
			if vRel < -settings.VelocityThreshold {
				ccp.velocityBias = -cc.restitution * vRel
			}
		}

		// prepare the block solver
		if cc.pointCount == 2 {
			ccp1 := &cc.points[0]
			ccp2 := &cc.points[1]

			rn1A := ccp1.rA.Cross(cc.normal)
			rn1B := ccp1.rB.Cross(cc.normal)
			rn2A := ccp2.rA.Cross(cc.normal)
			rn2B := ccp2.rB.Cross(cc.normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			if k11*k11 < settings.MaxConditionNumber*(k11*k22-k12*k12) {
				// K is safe to invert
				cc.K = Mat22{Ex: Vector{k11, k12}, Ey: Vector{k12, k22}}
				cc.normalMass = cc.K.Inverse()
			} else {
				// the constraints are redundant, just use one
				cc.pointCount = 1
			}
		}
	}
}

// WarmStart applies the impulses carried over from the previous step.
func (cs *ContactSolver) WarmStart() {
	for i := range cs.constraints {
		cc := &cs.constraints[i]
		bodyA := cc.bodyA
		bodyB := cc.bodyB
		mA, iA := bodyA.m_inv, bodyA.i_inv
		mB, iB := bodyB.m_inv, bodyB.i_inv
		normal := cc.normal
		tangent := normal.CrossScalar(1.0)

		for j := 0; j < cc.pointCount; j++ {
			ccp := &cc.points[j]
			P := normal.Mult(ccp.normalImpulse).Add(tangent.Mult(ccp.tangentImpulse))
			bodyA.w -= iA * ccp.rA.Cross(P)
			bodyA.v = bodyA.v.Sub(P.Mult(mA))
			bodyB.w += iB * ccp.rB.Cross(P)
			bodyB.v = bodyB.v.Add(P.Mult(mB))
		}
	}
}

func (cs *ContactSolver) SolveVelocityConstraints() {
	for i := range cs.constraints {
		solveContactVelocity(&cs.constraints[i])
	}
}

func solveContactVelocity(cc *ContactConstraint) {
	bodyA := cc.bodyA
	bodyB := cc.bodyB

	wA := bodyA.w
	wB := bodyB.w
	vA := bodyA.v
	vB := bodyB.v
	mA, iA := bodyA.m_inv, bodyA.i_inv
	mB, iB := bodyB.m_inv, bodyB.i_inv

	normal := cc.normal
	tangent := normal.CrossScalar(1.0)
	friction := cc.friction

	assert(cc.pointCount == 1 || cc.pointCount == 2, "Invalid contact point count")

	// solve tangent constraints first, the normal constraints are more important
	for j := 0; j < cc.pointCount; j++ {
		ccp := &cc.points[j]

		// relative velocity at contact
		dv := vB.Add(CrossScalar(wB, ccp.rB)).Sub(vA).Sub(CrossScalar(wA, ccp.rA))

		// compute tangent force
		vt := dv.Dot(tangent)
		lambda := ccp.tangentMass * -vt

		// clamp the accumulated force
		maxFriction := friction * ccp.normalImpulse
		newImpulse := Clamp(ccp.tangentImpulse+lambda, -maxFriction, maxFriction)
		lambda = newImpulse - ccp.tangentImpulse

		// apply contact impulse
		P := tangent.Mult(lambda)

		vA = vA.Sub(P.Mult(mA))
		wA -= iA * ccp.rA.Cross(P)

		vB = vB.Add(P.Mult(mB))
		wB += iB * ccp.rB.Cross(P)

		ccp.tangentImpulse = newImpulse
	}

	if cc.pointCount == 1 {
		ccp := &cc.points[0]

		dv := vB.Add(CrossScalar(wB, ccp.rB)).Sub(vA).Sub(CrossScalar(wA, ccp.rA))

		// compute normal impulse
		vn := dv.Dot(normal)
		lambda := -ccp.normalMass * (vn - ccp.velocityBias)

		// clamp the accumulated impulse
		newImpulse := math.Max(ccp.normalImpulse+lambda, 0.0)
		lambda = newImpulse - ccp.normalImpulse

		P := normal.Mult(lambda)
		vA = vA.Sub(P.Mult(mA))
		wA -= iA * ccp.rA.Cross(P)

		vB = vB.Add(P.Mult(mB))
		wB += iB * ccp.rB.Cross(P)
		ccp.normalImpulse = newImpulse
	} else {
		// Block solver. The total impulse x = a + d must satisfy the linear complementarity
		// problem
		//
		//   vn = A * x + b, vn >= 0, x >= 0 and vn_i * x_i = 0
		//
		// with b' = b - A * a. The four cases are tried in order and the first one that
		// satisfies the constraints is taken.
		cp1 := &cc.points[0]
		cp2 := &cc.points[1]

		a := Vector{cp1.normalImpulse, cp2.normalImpulse}
		assert(a.X >= 0.0 && a.Y >= 0.0, "Accumulated normal impulse is negative")

		// relative velocity at contact
		dv1 := vB.Add(CrossScalar(wB, cp1.rB)).Sub(vA).Sub(CrossScalar(wA, cp1.rA))
		dv2 := vB.Add(CrossScalar(wB, cp2.rB)).Sub(vA).Sub(CrossScalar(wA, cp2.rA))

		// compute normal velocity
		vn1 := dv1.Dot(normal)
		vn2 := dv2.Dot(normal)

		b := Vector{vn1 - cp1.velocityBias, vn2 - cp2.velocityBias}
		b = b.Sub(cc.K.MulV(a))

		apply := func(x Vector) {
			// incremental impulse
			d := x.Sub(a)

			P1 := normal.Mult(d.X)
			P2 := normal.Mult(d.Y)
			vA = vA.Sub(P1.Add(P2).Mult(mA))
			wA -= iA * (cp1.rA.Cross(P1) + cp2.rA.Cross(P2))

			vB = vB.Add(P1.Add(P2).Mult(mB))
			wB += iB * (cp1.rB.Cross(P1) + cp2.rB.Cross(P2))

			cp1.normalImpulse = x.X
			cp2.normalImpulse = x.Y
		}

		for {
			// Case 1: both constraints active, vn = 0
			x := cc.normalMass.MulV(b).Neg()
			if x.X >= 0.0 && x.Y >= 0.0 {
				apply(x)
				break
			}

			// Case 2: vn1 = 0 and x2 = 0
			x.X = -cp1.normalMass * b.X
			x.Y = 0.0
			vn2 = cc.K.Ex.Y*x.X + b.Y
			if x.X >= 0.0 && vn2 >= 0.0 {
				apply(x)
				break
			}

			// Case 3: vn2 = 0 and x1 = 0
			x.X = 0.0
			x.Y = -cp2.normalMass * b.Y
			vn1 = cc.K.Ey.X*x.Y + b.X
			if x.Y >= 0.0 && vn1 >= 0.0 {
				apply(x)
				break
			}

			// Case 4: x1 = x2 = 0
			x.X = 0.0
			x.Y = 0.0
			vn1 = b.X
			vn2 = b.Y
			if vn1 >= 0.0 && vn2 >= 0.0 {
				apply(x)
				break
			}

			// no solution, give up
			break
		}
	}

	bodyA.v = vA
	bodyA.w = wA
	bodyB.v = vB
	bodyB.w = wB
}

// StoreImpulses copies the accumulated impulses back to the manifolds for the next step.
func (cs *ContactSolver) StoreImpulses() {
	for i := range cs.constraints {
		cc := &cs.constraints[i]
		m := cc.manifold
		for j := 0; j < cc.pointCount; j++ {
			m.Points[j].NormalImpulse = cc.points[j].normalImpulse
			m.Points[j].TangentImpulse = cc.points[j].tangentImpulse
		}
	}
}

// SolvePositionConstraints runs one position iteration. It reports true once the deepest
// overlap is within three times LINEAR_SLOP.
func (cs *ContactSolver) SolvePositionConstraints(baumgarte float64) bool {
	minSeparation := 0.0

	for i := range cs.constraints {
		cc := &cs.constraints[i]
		bodyA := cc.bodyA
		bodyB := cc.bodyB
		separation := solveContactPosition(cc, baumgarte, cs.settings.MaxLinearCorrection,
			bodyA.m_inv, bodyA.i_inv, bodyB.m_inv, bodyB.i_inv)
		minSeparation = math.Min(minSeparation, separation)
	}

	// the separation can't be expected to stay above -LINEAR_SLOP because the solver stops
	// short of it
	return minSeparation >= -3.0*LINEAR_SLOP
}

// solveContactPosition pushes the bodies of one constraint apart with the given inverse masses
// and returns the deepest separation it saw.
func solveContactPosition(cc *ContactConstraint, baumgarte, maxCorrection, mA, iA, mB, iB float64) float64 {
	bodyA := cc.bodyA
	bodyB := cc.bodyB
	minSeparation := 0.0

	// solve normal constraints
	for j := 0; j < cc.pointCount; j++ {
		var psm positionSolverManifold
		psm.initialize(cc, j)
		normal := psm.normal

		point := psm.point
		separation := psm.separation

		rA := point.Sub(bodyA.sweep.C)
		rB := point.Sub(bodyB.sweep.C)

		// track max constraint error
		minSeparation = math.Min(minSeparation, separation)

		// prevent large corrections and allow slop
		C := Clamp(baumgarte*(separation+LINEAR_SLOP), -maxCorrection, 0.0)

		// compute the effective mass
		rnA := rA.Cross(normal)
		rnB := rB.Cross(normal)
		K := mA + mB + iA*rnA*rnA + iB*rnB*rnB

		// compute normal impulse
		impulse := 0.0
		if K > 0.0 {
			impulse = -C / K
		}

		P := normal.Mult(impulse)

		bodyA.sweep.C = bodyA.sweep.C.Sub(P.Mult(mA))
		bodyA.sweep.A -= iA * rA.Cross(P)
		bodyA.synchronizeTransform()

		bodyB.sweep.C = bodyB.sweep.C.Add(P.Mult(mB))
		bodyB.sweep.A += iB * rB.Cross(P)
		bodyB.synchronizeTransform()
	}

	return minSeparation
}

type positionSolverManifold struct {
	normal     Vector
	point      Vector
	separation float64
}

// initialize evaluates one manifold point at the current body transforms.
func (psm *positionSolverManifold) initialize(cc *ContactConstraint, index int) {
	assert(cc.pointCount > 0, "Empty contact constraint")

	xfA := cc.bodyA.xf
	xfB := cc.bodyB.xf

	switch cc.manifoldType {
	case MANIFOLD_CIRCLES:
		pointA := xfA.Apply(cc.localPoint)
		pointB := xfB.Apply(cc.points[0].localPoint)
		psm.normal = pointB.Sub(pointA).Normalize()
		psm.point = pointA.Lerp(pointB, 0.5)
		psm.separation = pointB.Sub(pointA).Dot(psm.normal) - cc.radiusA - cc.radiusB

	case MANIFOLD_FACE_A:
		psm.normal = xfA.Q.Rotate(cc.localNormal)
		planePoint := xfA.Apply(cc.localPoint)

		clipPoint := xfB.Apply(cc.points[index].localPoint)
		psm.separation = clipPoint.Sub(planePoint).Dot(psm.normal) - cc.radiusA - cc.radiusB
		psm.point = clipPoint

	case MANIFOLD_FACE_B:
		psm.normal = xfB.Q.Rotate(cc.localNormal)
		planePoint := xfB.Apply(cc.localPoint)

		clipPoint := xfA.Apply(cc.points[index].localPoint)
		psm.separation = clipPoint.Sub(planePoint).Dot(psm.normal) - cc.radiusA - cc.radiusB
		psm.point = clipPoint

		// ensure normal points from A to B
		psm.normal = psm.normal.Neg()
	}
}
