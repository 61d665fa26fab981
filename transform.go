package physics

// Transform is a rigid transform: a translation and a rotation.
type Transform struct {
	P Vector
	Q Rot
}

func NewTransformIdentity() Transform {
	return Transform{Q: RotIdentity()}
}

func NewTransform(position Vector, angle float64) Transform {
	return Transform{P: position, Q: NewRot(angle)}
}

// Apply transforms a local point into world space.
func (t Transform) Apply(v Vector) Vector {
	return t.Q.Rotate(v).Add(t.P)
}

// Unapply transforms a world point into local space.
func (t Transform) Unapply(v Vector) Vector {
	return t.Q.Unrotate(v.Sub(t.P))
}

// Mul composes two transforms, t * other.
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		P: t.Q.Rotate(other.P).Add(t.P),
		Q: t.Q.Mul(other.Q),
	}
}

// MulT expresses other in the frame of t, inverse(t) * other.
func (t Transform) MulT(other Transform) Transform {
	return Transform{
		P: t.Q.Unrotate(other.P.Sub(t.P)),
		Q: t.Q.MulT(other.Q),
	}
}
