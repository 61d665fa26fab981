package physics

import "math"

// Segment is a line segment shape with a thin skin. Segments have no volume, so they are only
// useful on static and kinematic bodies or as zero mass parts of dynamic bodies.
type Segment struct {
	a, b Vector
	r    float64
}

func NewSegment(a, b Vector) *Segment {
	assert(a.DistanceSq(b) > LINEAR_SLOP*LINEAR_SLOP, "Segment is too short")
	return &Segment{
		a: a,
		b: b,
		r: POLYGON_RADIUS,
	}
}

func (seg *Segment) Class() int {
	return SHAPE_CLASS_SEGMENT
}

func (seg *Segment) Radius() float64 {
	return seg.r
}

func (seg *Segment) A() Vector {
	return seg.a
}

func (seg *Segment) B() Vector {
	return seg.b
}

func (seg *Segment) Clone() Shape {
	s := *seg
	return &s
}

func (seg *Segment) ComputeBB(xf Transform) BB {
	v1 := xf.Apply(seg.a)
	v2 := xf.Apply(seg.b)
	return BB{
		math.Min(v1.X, v2.X),
		math.Min(v1.Y, v2.Y),
		math.Max(v1.X, v2.X),
		math.Max(v1.Y, v2.Y),
	}.Grow(seg.r)
}

func (seg *Segment) ComputeMass(density float64) MassData {
	return MassData{Center: seg.a.Lerp(seg.b, 0.5)}
}

func (seg *Segment) TestPoint(xf Transform, p Vector) bool {
	return false
}

// RayCast intersects the ray with the segment's supporting line. Both sides are hit.
func (seg *Segment) RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool) {
	var output RayCastOutput

	// put the ray into the segment's frame
	p1 := xf.Unapply(input.P1)
	p2 := xf.Unapply(input.P2)
	d := p2.Sub(p1)

	v1, v2 := seg.a, seg.b
	e := v2.Sub(v1)
	normal := Vector{e.Y, -e.X}.Normalize()

	// q = p1 + t * d
	// dot(normal, q - v1) = 0
	numerator := normal.Dot(v1.Sub(p1))
	denominator := normal.Dot(d)
	if denominator == 0 {
		return output, false
	}

	t := numerator / denominator
	if t < 0 || input.MaxFraction < t {
		return output, false
	}

	q := p1.Add(d.Mult(t))

	// q = v1 + s * e
	rr := e.LengthSq()
	if rr == 0 {
		return output, false
	}
	s := q.Sub(v1).Dot(e) / rr
	if s < 0 || 1 < s {
		return output, false
	}

	output.Fraction = t
	if numerator > 0 {
		output.Normal = xf.Q.Rotate(normal).Neg()
	} else {
		output.Normal = xf.Q.Rotate(normal)
	}
	return output, true
}

// polygon returns the segment as a two sided, two vertex polygon used by the polygon clipper.
func (seg *Segment) polygon() PolyShape {
	var poly PolyShape
	poly.SetAsEdge(seg.a, seg.b)
	return poly
}

func (seg *Segment) distanceProxy() DistanceProxy {
	proxy := DistanceProxy{count: 2, radius: seg.r}
	proxy.vertices[0] = seg.a
	proxy.vertices[1] = seg.b
	return proxy
}
