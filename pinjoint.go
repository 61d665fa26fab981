package physics

import "math"

// PinJoint holds two anchors at a fixed distance, like a massless rod. The anchors are local to
// their bodies.
type PinJoint struct {
	*Constraint
	AnchorA, AnchorB Vector
	Dist             float64

	frame       jointFrame
	axis        Vector
	mass, bias  float64
	accumulated float64
}

// NewPinJoint keeps the anchors at the distance they have when the joint is made.
func NewPinJoint(a, b *Body, anchorA, anchorB Vector) *Constraint {
	joint := &PinJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
		Dist:    b.LocalToWorld(anchorB).Distance(a.LocalToWorld(anchorA)),
	}
	joint.Constraint = NewConstraint(joint, a, b)
	return joint.Constraint
}

// SetDist changes the rod length and wakes the bodies so they move to it.
func (joint *PinJoint) SetDist(dist float64) {
	assert(dist >= 0, "Pin joint distance must not be negative")
	joint.ActivateBodies()
	joint.Dist = dist
}

func (joint *PinJoint) initVelocity(step *timeStep) {
	a, b := joint.a, joint.b
	joint.frame = joint.anchorFrame(joint.AnchorA, joint.AnchorB)

	d := joint.frame.separation(a, b)
	length := d.Length()
	if length > LINEAR_SLOP {
		joint.axis = d.Mult(1 / length)
	} else {
		// the anchors coincide, there is no direction to push along
		joint.axis = Vector{}
	}

	joint.mass = joint.frame.axialMass(joint.axis)
	joint.bias = joint.biasVelocity(length-joint.Dist, step.dt)

	joint.accumulated = warmStart(step, joint.accumulated)
	joint.frame.apply(a, b, joint.axis.Mult(joint.accumulated))
}

func (joint *PinJoint) solveVelocity(step *timeStep) {
	a, b := joint.a, joint.b

	cdot := joint.frame.velocity(a, b).Dot(joint.axis)
	lambda := joint.mass * (joint.bias - cdot)

	limit := joint.maxImpulse(step.dt)
	old := joint.accumulated
	joint.accumulated = Clamp(old+lambda, -limit, limit)
	lambda = joint.accumulated - old

	joint.frame.apply(a, b, joint.axis.Mult(lambda))
}

func (joint *PinJoint) impulse() float64 {
	return math.Abs(joint.accumulated)
}
