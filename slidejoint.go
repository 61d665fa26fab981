package physics

import "math"

// slide joint limit states
const (
	limitInactive = iota
	limitAtLower
	limitAtUpper
)

// SlideJoint keeps the distance between two anchors within [Min, Max], like a chain that also
// resists being pushed closer than Min.
type SlideJoint struct {
	*Constraint
	AnchorA, AnchorB Vector
	Min, Max         float64

	frame       jointFrame
	axis        Vector
	state       int
	mass, bias  float64
	accumulated float64
}

func NewSlideJoint(a, b *Body, anchorA, anchorB Vector, min, max float64) *Constraint {
	assert(min >= 0 && min <= max, "Slide joint needs 0 <= min <= max")
	joint := &SlideJoint{
		AnchorA: anchorA,
		AnchorB: anchorB,
		Min:     min,
		Max:     max,
	}
	joint.Constraint = NewConstraint(joint, a, b)
	return joint.Constraint
}

// SetLimits changes the allowed range and wakes the bodies.
func (joint *SlideJoint) SetLimits(min, max float64) {
	assert(min >= 0 && min <= max, "Slide joint needs 0 <= min <= max")
	joint.ActivateBodies()
	joint.Min = min
	joint.Max = max
}

func (joint *SlideJoint) initVelocity(step *timeStep) {
	a, b := joint.a, joint.b
	joint.frame = joint.anchorFrame(joint.AnchorA, joint.AnchorB)

	d := joint.frame.separation(a, b)
	length := d.Length()

	state := limitInactive
	var err float64
	switch {
	case length > joint.Max:
		state = limitAtUpper
		err = length - joint.Max
	case length < joint.Min && length > LINEAR_SLOP:
		state = limitAtLower
		err = length - joint.Min
	}

	// a limit that was not active last step has nothing to warm start from
	if state != joint.state {
		joint.accumulated = 0
	}
	joint.state = state

	if state == limitInactive {
		joint.accumulated = 0
		return
	}

	joint.axis = d.Mult(1 / length)
	joint.mass = joint.frame.axialMass(joint.axis)
	joint.bias = joint.biasVelocity(err, step.dt)

	joint.accumulated = warmStart(step, joint.accumulated)
	joint.frame.apply(a, b, joint.axis.Mult(joint.accumulated))
}

func (joint *SlideJoint) solveVelocity(step *timeStep) {
	if joint.state == limitInactive {
		return
	}
	a, b := joint.a, joint.b

	cdot := joint.frame.velocity(a, b).Dot(joint.axis)
	lambda := joint.mass * (joint.bias - cdot)

	// the upper limit can only pull the anchors together, the lower limit only push them apart
	limit := joint.maxImpulse(step.dt)
	old := joint.accumulated
	if joint.state == limitAtUpper {
		joint.accumulated = Clamp(old+lambda, -limit, 0)
	} else {
		joint.accumulated = Clamp(old+lambda, 0, limit)
	}
	lambda = joint.accumulated - old

	joint.frame.apply(a, b, joint.axis.Mult(lambda))
}

func (joint *SlideJoint) impulse() float64 {
	return math.Abs(joint.accumulated)
}
