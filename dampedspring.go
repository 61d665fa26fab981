package physics

import "math"

// SpringForceFunc computes the spring force for the current anchor distance. Positive pushes
// the anchors apart.
type SpringForceFunc func(spring *DampedSpring, dist float64) float64

// DampedSpring pulls two anchors toward RestLength. It is soft: the stiffness is applied as an
// explicit force and the damping implicitly along the spring axis, so it never holds the
// distance exactly.
type DampedSpring struct {
	*Constraint
	AnchorA, AnchorB               Vector
	RestLength, Stiffness, Damping float64
	SpringForce                    SpringForceFunc

	frame       jointFrame
	axis        Vector
	softMass    float64
	gamma       float64
	springPart  float64
	dampingPart float64
}

func NewDampedSpring(a, b *Body, anchorA, anchorB Vector, restLength, stiffness, damping float64) *Constraint {
	assert(stiffness >= 0 && damping >= 0, "Spring stiffness and damping must not be negative")
	spring := &DampedSpring{
		AnchorA:     anchorA,
		AnchorB:     anchorB,
		RestLength:  restLength,
		Stiffness:   stiffness,
		Damping:     damping,
		SpringForce: HookeSpringForce,
	}
	spring.Constraint = NewConstraint(spring, a, b)
	return spring.Constraint
}

// HookeSpringForce is linear in the stretch.
func HookeSpringForce(spring *DampedSpring, dist float64) float64 {
	return (spring.RestLength - dist) * spring.Stiffness
}

// SetRestLength changes the length the spring relaxes to and wakes the bodies.
func (spring *DampedSpring) SetRestLength(restLength float64) {
	spring.ActivateBodies()
	spring.RestLength = restLength
}

func (spring *DampedSpring) initVelocity(step *timeStep) {
	a, b := spring.a, spring.b
	spring.frame = spring.anchorFrame(spring.AnchorA, spring.AnchorB)
	spring.dampingPart = 0
	spring.springPart = 0

	d := spring.frame.separation(a, b)
	length := d.Length()
	if length <= LINEAR_SLOP {
		// no axis to act along
		spring.softMass = 0
		return
	}
	spring.axis = d.Mult(1 / length)

	mass := spring.frame.axialMass(spring.axis)
	if mass == 0 {
		spring.softMass = 0
		return
	}

	// implicit damping: the damping impulse is proportional to the velocity at the end of the
	// step, which makes it a soft constraint with gamma = 1 / (c * dt)
	spring.gamma = 0
	spring.softMass = 0
	if spring.Damping > 0 {
		spring.gamma = 1.0 / (spring.Damping * step.dt)
		spring.softMass = 1.0 / (1.0/mass + spring.gamma)
	}

	// the stiffness is recomputed from the stretch each step, so there is nothing to scale by
	// the step ratio
	f := Clamp(spring.SpringForce(spring, length), -spring.maxForce, spring.maxForce)
	spring.springPart = f * step.dt
	spring.frame.apply(a, b, spring.axis.Mult(spring.springPart))
}

func (spring *DampedSpring) solveVelocity(step *timeStep) {
	if spring.softMass == 0 {
		return
	}
	a, b := spring.a, spring.b

	cdot := spring.frame.velocity(a, b).Dot(spring.axis)
	lambda := -spring.softMass * (cdot + spring.gamma*spring.dampingPart)
	spring.dampingPart += lambda

	spring.frame.apply(a, b, spring.axis.Mult(lambda))
}

func (spring *DampedSpring) impulse() float64 {
	return math.Abs(spring.springPart + spring.dampingPart)
}
