package physics

import "math"

type Circle struct {
	p Vector
	r float64
}

func NewCircle(radius float64, offset Vector) *Circle {
	assert(radius >= 0, "Circle radius must not be negative")
	return &Circle{
		p: offset,
		r: radius,
	}
}

func (circle *Circle) Class() int {
	return SHAPE_CLASS_CIRCLE
}

func (circle *Circle) Radius() float64 {
	return circle.r
}

func (circle *Circle) Offset() Vector {
	return circle.p
}

func (circle *Circle) Clone() Shape {
	c := *circle
	return &c
}

func (circle *Circle) ComputeBB(xf Transform) BB {
	return NewBBForCircle(xf.Apply(circle.p), circle.r)
}

func (circle *Circle) ComputeMass(density float64) MassData {
	mass := density * AreaForCircle(0, circle.r)
	return MassData{
		Mass:   mass,
		Center: circle.p,
		I:      MomentForCircle(mass, 0, circle.r, circle.p),
	}
}

func (circle *Circle) TestPoint(xf Transform, p Vector) bool {
	center := xf.Apply(circle.p)
	return p.DistanceSq(center) <= circle.r*circle.r
}

// RayCast solves |s + t*d|^2 = r^2 for the smallest t in [0, MaxFraction].
func (circle *Circle) RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool) {
	var output RayCastOutput

	position := xf.Apply(circle.p)
	s := input.P1.Sub(position)
	b := s.LengthSq() - circle.r*circle.r

	d := input.P2.Sub(input.P1)
	c := s.Dot(d)
	rr := d.LengthSq()
	sigma := c*c - rr*b

	if sigma < 0 || rr < EPSILON {
		return output, false
	}

	a := -(c + math.Sqrt(sigma))
	if 0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		output.Fraction = a
		output.Normal = s.Add(d.Mult(a)).Normalize()
		return output, true
	}
	return output, false
}

func (circle *Circle) distanceProxy() DistanceProxy {
	proxy := DistanceProxy{count: 1, radius: circle.r}
	proxy.vertices[0] = circle.p
	return proxy
}
