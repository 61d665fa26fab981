package physics

// PivotJoint holds a point of each body together and lets the bodies rotate about it.
type PivotJoint struct {
	*Constraint
	AnchorA, AnchorB Vector

	frame       jointFrame
	mass        Mat22
	bias        Vector
	accumulated Vector
}

// NewPivotJoint pins the bodies together at a world point.
func NewPivotJoint(a, b *Body, pivot Vector) *Constraint {
	return NewPivotJoint2(a, b, a.WorldToLocal(pivot), b.WorldToLocal(pivot))
}

// NewPivotJoint2 takes the pivot as an anchor local to each body.
func NewPivotJoint2(a, b *Body, anchorA, anchorB Vector) *Constraint {
	joint := &PivotJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
	}
	joint.Constraint = NewConstraint(joint, a, b)
	return joint.Constraint
}

func (joint *PivotJoint) initVelocity(step *timeStep) {
	a, b := joint.a, joint.b
	joint.frame = joint.anchorFrame(joint.AnchorA, joint.AnchorB)
	joint.mass = joint.frame.pointMass()

	// the bias shares the scalar limit, applied to the length of the error
	err := joint.frame.separation(a, b)
	if length := err.Length(); length > 0 {
		joint.bias = err.Mult(joint.biasVelocity(length, step.dt) / length)
	} else {
		joint.bias = Vector{}
	}

	if step.warmStarting {
		joint.accumulated = joint.accumulated.Mult(step.dtRatio)
	} else {
		joint.accumulated = Vector{}
	}
	joint.frame.apply(a, b, joint.accumulated)
}

func (joint *PivotJoint) solveVelocity(step *timeStep) {
	a, b := joint.a, joint.b

	cdot := joint.frame.velocity(a, b)
	lambda := joint.mass.MulV(joint.bias.Sub(cdot))

	old := joint.accumulated
	joint.accumulated = old.Add(lambda).Clamp(joint.maxImpulse(step.dt))
	lambda = joint.accumulated.Sub(old)

	joint.frame.apply(a, b, lambda)
}

func (joint *PivotJoint) impulse() float64 {
	return joint.accumulated.Length()
}
