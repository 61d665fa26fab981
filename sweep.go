package physics

import "math"

// Sweep describes the motion of a body over a time step for continuous collision. The
// shape positions are relative to the body origin, which may not coincide with the center
// of mass. The sweep tracks the center of mass.
type Sweep struct {
	LocalCenter Vector
	// center and angle at the start of the sub step
	C0 Vector
	A0 float64
	// center and angle at the end of the step
	C Vector
	A float64
}

// GetTransform interpolates the body transform at beta in [0,1], 0 being the start of the sweep.
func (s *Sweep) GetTransform(beta float64) Transform {
	xf := Transform{
		P: s.C0.Mult(1.0 - beta).Add(s.C.Mult(beta)),
		Q: NewRot((1.0-beta)*s.A0 + beta*s.A),
	}
	// shift to origin
	xf.P = xf.P.Sub(xf.Q.Rotate(s.LocalCenter))
	return xf
}

// Advance moves the start of the sweep forward to t, keeping the end where it is.
func (s *Sweep) Advance(t float64) {
	s.C0 = s.C0.Mult(1.0 - t).Add(s.C.Mult(t))
	s.A0 = (1.0-t)*s.A0 + t*s.A
}

// Normalize wraps the angles into [0, 2pi) without changing the angular difference.
func (s *Sweep) Normalize() {
	d := 2 * math.Pi * math.Floor(s.A0/(2*math.Pi))
	s.A0 -= d
	s.A -= d
}
