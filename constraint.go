package physics

import "math"

// Constrainer is implemented by each joint type. Joints only act on velocities: once per step
// the island calls initVelocity, which measures the positional error, computes effective masses
// and warm starts, then solveVelocity once per velocity iteration.
type Constrainer interface {
	initVelocity(step *timeStep)
	solveVelocity(step *timeStep)
	// impulse is the magnitude of the impulse applied during the last step.
	impulse() float64
}

// JointID is a stable handle to a joint, see BodyID.
type JointID slotID

type ConstraintPreSolveFunc func(*Constraint, *World)
type ConstraintPostSolveFunc func(*Constraint, *World)

// Constraint connects two bodies. Joints correct their error with a velocity bias, so they
// take part in the velocity iterations only.
type Constraint struct {
	Class Constrainer
	id    JointID
	world *World

	a, b *Body

	maxForce, errorBias, maxBias float64

	collideBodies bool
	island        bool

	PreSolve  ConstraintPreSolveFunc
	PostSolve ConstraintPostSolveFunc

	UserData interface{}
}

func NewConstraint(class Constrainer, a, b *Body) *Constraint {
	assert(a != nil && b != nil, "Constraint bodies must not be nil")
	assert(a != b, "Constraint must connect two different bodies")
	return &Constraint{
		Class: class,
		a:     a,
		b:     b,

		maxForce:  INFINITY,
		errorBias: math.Pow(1.0-0.1, 60.0),
		maxBias:   INFINITY,

		collideBodies: true,
		PreSolve:      nil,
		PostSolve:     nil,
	}
}

func (c *Constraint) ID() JointID {
	return c.id
}

func (c *Constraint) A() *Body {
	return c.a
}

func (c *Constraint) B() *Body {
	return c.b
}

func (c *Constraint) Other(body *Body) *Body {
	if c.a == body {
		return c.b
	}
	return c.a
}

func (c *Constraint) ActivateBodies() {
	c.a.SetAwake(true)
	c.b.SetAwake(true)
}

func (c *Constraint) MaxForce() float64 {
	return c.maxForce
}

func (c *Constraint) SetMaxForce(max float64) {
	assert(max >= 0.0, "Must be positive")
	c.ActivateBodies()
	c.maxForce = max
}

func (c *Constraint) MaxBias() float64 {
	return c.maxBias
}

func (c *Constraint) SetMaxBias(max float64) {
	assert(max >= 0, "Must be positive")
	c.ActivateBodies()
	c.maxBias = max
}

func (c *Constraint) ErrorBias() float64 {
	return c.errorBias
}

// SetErrorBias sets the fraction of error left after one second, 0.1% by default.
func (c *Constraint) SetErrorBias(errorBias float64) {
	assert(errorBias >= 0, "Must be positive")
	c.ActivateBodies()
	c.errorBias = errorBias
}

func (c *Constraint) CollideBodies() bool {
	return c.collideBodies
}

// SetCollideBodies controls whether the connected bodies may collide with each other.
func (c *Constraint) SetCollideBodies(collideBodies bool) {
	if c.collideBodies == collideBodies {
		return
	}
	c.ActivateBodies()
	c.collideBodies = collideBodies
	if c.world != nil {
		c.flagContacts()
	}
}

// Impulse is the most recent impulse the joint applied.
func (c *Constraint) Impulse() float64 {
	return c.Class.impulse()
}

// flagContacts makes the contacts between the two bodies re-run filtering.
func (c *Constraint) flagContacts() {
	for _, edge := range c.b.contactEdges {
		if edge.Other == c.a {
			edge.Contact.flagForFiltering()
		}
	}
}

// biasVelocity turns a positional error into the velocity that removes the part of it that
// ErrorBias allows per step, limited by MaxBias.
func (c *Constraint) biasVelocity(err float64, dt float64) float64 {
	rate := (1.0 - math.Pow(c.errorBias, dt)) / dt
	return Clamp(-rate*err, -c.maxBias, c.maxBias)
}

// maxImpulse is the largest impulse the joint may accumulate in a step of length dt.
func (c *Constraint) maxImpulse(dt float64) float64 {
	return c.maxForce * dt
}

// jointFrame is the per step geometry shared by all joints: the anchor offsets from each
// center of mass and the inverse masses of both bodies.
type jointFrame struct {
	rA, rB         Vector
	mA, mB, iA, iB float64
}

func (c *Constraint) anchorFrame(localA, localB Vector) jointFrame {
	a, b := c.a, c.b
	return jointFrame{
		rA: a.xf.Q.Rotate(localA.Sub(a.sweep.LocalCenter)),
		rB: b.xf.Q.Rotate(localB.Sub(b.sweep.LocalCenter)),
		mA: a.m_inv, mB: b.m_inv,
		iA: a.i_inv, iB: b.i_inv,
	}
}

// separation is the vector from the anchor on A to the anchor on B.
func (f *jointFrame) separation(a, b *Body) Vector {
	return b.sweep.C.Add(f.rB).Sub(a.sweep.C.Add(f.rA))
}

// velocity is the velocity of the anchor on B relative to the anchor on A.
func (f *jointFrame) velocity(a, b *Body) Vector {
	vA := a.v.Add(CrossScalar(a.w, f.rA))
	vB := b.v.Add(CrossScalar(b.w, f.rB))
	return vB.Sub(vA)
}

// axialMass is the effective mass along the unit axis n. Bodies that cannot respond along n,
// two kinematic bodies for example, get zero mass so the joint applies nothing.
func (f *jointFrame) axialMass(n Vector) float64 {
	rnA := f.rA.Cross(n)
	rnB := f.rB.Cross(n)
	k := f.mA + f.mB + f.iA*rnA*rnA + f.iB*rnB*rnB
	if k > EPSILON {
		return 1.0 / k
	}
	return 0
}

// pointMass is the inverse of the 2x2 effective mass of a point to point constraint, or zero
// when the matrix is singular.
func (f *jointFrame) pointMass() Mat22 {
	rA, rB := f.rA, f.rB
	var K Mat22
	K.Ex.X = f.mA + f.mB + f.iA*rA.Y*rA.Y + f.iB*rB.Y*rB.Y
	K.Ey.X = -f.iA*rA.X*rA.Y - f.iB*rB.X*rB.Y
	K.Ex.Y = K.Ey.X
	K.Ey.Y = f.mA + f.mB + f.iA*rA.X*rA.X + f.iB*rB.X*rB.X

	if math.Abs(K.Determinant()) <= EPSILON {
		return Mat22{}
	}
	return K.Inverse()
}

// apply adds the impulse p to B at its anchor and the opposite to A.
func (f *jointFrame) apply(a, b *Body, p Vector) {
	a.v = a.v.Sub(p.Mult(f.mA))
	a.w -= f.iA * f.rA.Cross(p)
	b.v = b.v.Add(p.Mult(f.mB))
	b.w += f.iB * f.rB.Cross(p)
}

// warmStart scales an impulse carried over from the previous step to this step's length, or
// drops it when warm starting is off.
func warmStart(step *timeStep, impulse float64) float64 {
	if !step.warmStarting {
		return 0
	}
	return impulse * step.dtRatio
}
