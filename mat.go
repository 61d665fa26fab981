package physics

import "math"

// Rot is a rotation stored as its sine and cosine.
type Rot struct {
	S, C float64
}

func NewRot(angle float64) Rot {
	return Rot{math.Sin(angle), math.Cos(angle)}
}

func RotIdentity() Rot {
	return Rot{0, 1}
}

func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

func (q Rot) Rotate(v Vector) Vector {
	return Vector{q.C*v.X - q.S*v.Y, q.S*v.X + q.C*v.Y}
}

// Unrotate applies the inverse rotation.
func (q Rot) Unrotate(v Vector) Vector {
	return Vector{q.C*v.X + q.S*v.Y, -q.S*v.X + q.C*v.Y}
}

// Mul composes two rotations, q * r.
func (q Rot) Mul(r Rot) Rot {
	return Rot{q.S*r.C + q.C*r.S, q.C*r.C - q.S*r.S}
}

// MulT composes the inverse of q with r, transpose(q) * r.
func (q Rot) MulT(r Rot) Rot {
	return Rot{q.C*r.S - q.S*r.C, q.C*r.C + q.S*r.S}
}

// Mat22 is a column major 2x2 matrix.
type Mat22 struct {
	Ex, Ey Vector
}

func (m Mat22) MulV(v Vector) Vector {
	return Vector{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

func (m Mat22) Determinant() float64 {
	return m.Ex.X*m.Ey.Y - m.Ey.X*m.Ex.Y
}

func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22{
		Ex: Vector{det * d, -det * c},
		Ey: Vector{-det * b, det * a},
	}
}

// Solve computes x in A * x = b without inverting A. A singular matrix solves to zero.
func (m Mat22) Solve(b Vector) Vector {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vector{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}
