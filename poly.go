package physics

// PolyShape is a convex polygon with counter clockwise winding. Polygons are solid: a point
// inside is contained. The skin radius keeps stacking stable.
type PolyShape struct {
	verts    [MAX_POLYGON_VERTICES]Vector
	normals  [MAX_POLYGON_VERTICES]Vector
	count    int
	centroid Vector
	r        float64
}

// NewPolyShape computes the convex hull of verts. Collinear and nearly coincident points are
// removed. Panics when fewer than 3 hull points remain or more than MAX_POLYGON_VERTICES are given.
func NewPolyShape(verts []Vector) *PolyShape {
	poly := &PolyShape{}
	poly.Set(verts)
	return poly
}

// NewBox creates an axis aligned box with the given half width and half height.
func NewBox(hw, hh float64) *PolyShape {
	poly := &PolyShape{}
	poly.SetAsBox(hw, hh)
	return poly
}

func NewOrientedBox(hw, hh float64, center Vector, angle float64) *PolyShape {
	poly := &PolyShape{}
	poly.SetAsOrientedBox(hw, hh, center, angle)
	return poly
}

func (poly *PolyShape) Class() int {
	return SHAPE_CLASS_POLY
}

func (poly *PolyShape) Radius() float64 {
	return poly.r
}

func (poly *PolyShape) Count() int {
	return poly.count
}

func (poly *PolyShape) Vert(i int) Vector {
	assert(0 <= i && i < poly.count, "Vertex index out of range")
	return poly.verts[i]
}

func (poly *PolyShape) Normal(i int) Vector {
	assert(0 <= i && i < poly.count, "Normal index out of range")
	return poly.normals[i]
}

func (poly *PolyShape) Centroid() Vector {
	return poly.centroid
}

func (poly *PolyShape) Clone() Shape {
	p := *poly
	return &p
}

func (poly *PolyShape) SetAsBox(hw, hh float64) {
	poly.count = 4
	poly.r = POLYGON_RADIUS
	poly.verts[0] = Vector{-hw, -hh}
	poly.verts[1] = Vector{hw, -hh}
	poly.verts[2] = Vector{hw, hh}
	poly.verts[3] = Vector{-hw, hh}
	poly.normals[0] = Vector{0, -1}
	poly.normals[1] = Vector{1, 0}
	poly.normals[2] = Vector{0, 1}
	poly.normals[3] = Vector{-1, 0}
	poly.centroid = Vector{}
}

func (poly *PolyShape) SetAsOrientedBox(hw, hh float64, center Vector, angle float64) {
	poly.SetAsBox(hw, hh)
	poly.centroid = center

	xf := NewTransform(center, angle)
	for i := 0; i < poly.count; i++ {
		poly.verts[i] = xf.Apply(poly.verts[i])
		poly.normals[i] = xf.Q.Rotate(poly.normals[i])
	}
}

// SetAsEdge makes a two sided, two vertex polygon. It has no area and no mass.
func (poly *PolyShape) SetAsEdge(v1, v2 Vector) {
	poly.count = 2
	poly.r = POLYGON_RADIUS
	poly.verts[0] = v1
	poly.verts[1] = v2
	poly.centroid = v1.Lerp(v2, 0.5)
	poly.normals[0] = v2.Sub(v1).CrossScalar(1).Normalize()
	poly.normals[1] = poly.normals[0].Neg()
}

func (poly *PolyShape) Set(verts []Vector) {
	assert(3 <= len(verts) && len(verts) <= MAX_POLYGON_VERTICES, "Polygon must have between 3 and ", MAX_POLYGON_VERTICES, " vertices")

	// weld close points
	var ps [MAX_POLYGON_VERTICES]Vector
	n := 0
	for _, v := range verts {
		unique := true
		for j := 0; j < n; j++ {
			if v.DistanceSq(ps[j]) < (0.5*LINEAR_SLOP)*(0.5*LINEAR_SLOP) {
				unique = false
				break
			}
		}
		if unique {
			ps[n] = v
			n++
		}
	}
	assert(n >= 3, "Polygon is degenerate")

	// gift wrap starting from the right most point
	i0 := 0
	x0 := ps[0].X
	for i := 1; i < n; i++ {
		x := ps[i].X
		if x > x0 || (x == x0 && ps[i].Y < ps[i0].Y) {
			i0 = i
			x0 = x
		}
	}

	var hull [MAX_POLYGON_VERTICES]int
	m := 0
	ih := i0
	for {
		hull[m] = ih

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}

			r := ps[ie].Sub(ps[hull[m]])
			v := ps[j].Sub(ps[hull[m]])
			c := r.Cross(v)
			if c < 0 {
				ie = j
			}

			// collinear, keep the furthest point
			if c == 0 && v.LengthSq() > r.LengthSq() {
				ie = j
			}
		}

		m++
		ih = ie

		if ie == i0 {
			break
		}
		assert(m < MAX_POLYGON_VERTICES, "Polygon hull did not close")
	}
	assert(m >= 3, "Polygon is degenerate")

	poly.count = m
	poly.r = POLYGON_RADIUS
	for i := 0; i < m; i++ {
		poly.verts[i] = ps[hull[i]]
	}

	for i := 0; i < m; i++ {
		i2 := (i + 1) % m
		edge := poly.verts[i2].Sub(poly.verts[i])
		assert(edge.LengthSq() > EPSILON*EPSILON, "Polygon has a degenerate edge")
		poly.normals[i] = edge.CrossScalar(1).Normalize()
	}

	poly.centroid = computeCentroid(poly.verts[:m])
}

func computeCentroid(vs []Vector) Vector {
	var c Vector
	area := 0.0

	// reference point inside the polygon keeps the triangles well conditioned
	pRef := vs[0]
	const inv3 = 1.0 / 3.0

	for i := range vs {
		p2 := vs[i]
		p3 := vs[(i+1)%len(vs)]

		e1 := p2.Sub(pRef)
		e2 := p3.Sub(pRef)

		triangleArea := 0.5 * e1.Cross(e2)
		area += triangleArea

		c = c.Add(pRef.Add(p2).Add(p3).Mult(triangleArea * inv3))
	}

	assert(area > EPSILON, "Polygon has no area")
	return c.Mult(1.0 / area)
}

func (poly *PolyShape) ComputeBB(xf Transform) BB {
	lower := xf.Apply(poly.verts[0])
	upper := lower
	for i := 1; i < poly.count; i++ {
		v := xf.Apply(poly.verts[i])
		lower = lower.Min(v)
		upper = upper.Max(v)
	}
	return BB{lower.X, lower.Y, upper.X, upper.Y}.Grow(poly.r)
}

// ComputeMass integrates the polygon as a fan of triangles around the vertex average.
// The skin radius is ignored.
func (poly *PolyShape) ComputeMass(density float64) MassData {
	if poly.count < 3 {
		return MassData{Center: poly.centroid}
	}

	var s Vector
	for i := 0; i < poly.count; i++ {
		s = s.Add(poly.verts[i])
	}
	s = s.Mult(1.0 / float64(poly.count))

	var center Vector
	area := 0.0
	I := 0.0
	const inv3 = 1.0 / 3.0

	for i := 0; i < poly.count; i++ {
		e1 := poly.verts[i].Sub(s)
		e2 := poly.verts[(i+1)%poly.count].Sub(s)

		D := e1.Cross(e2)

		triangleArea := 0.5 * D
		area += triangleArea

		center = center.Add(e1.Add(e2).Mult(triangleArea * inv3))

		ex1, ey1 := e1.X, e1.Y
		ex2, ey2 := e2.X, e2.Y

		intx2 := ex1*ex1 + ex2*ex1 + ex2*ex2
		inty2 := ey1*ey1 + ey2*ey1 + ey2*ey2

		I += (0.25 * inv3 * D) * (intx2 + inty2)
	}

	var massData MassData
	massData.Mass = density * area

	assert(area > EPSILON, "Polygon has no area")
	center = center.Mult(1.0 / area)
	massData.Center = center.Add(s)

	// inertia about the reference point, shifted to the body origin
	massData.I = density*I + massData.Mass*(massData.Center.Dot(massData.Center)-center.Dot(center))
	return massData
}

func (poly *PolyShape) TestPoint(xf Transform, p Vector) bool {
	pLocal := xf.Unapply(p)
	for i := 0; i < poly.count; i++ {
		if poly.normals[i].Dot(pLocal.Sub(poly.verts[i])) > 0 {
			return false
		}
	}
	return true
}

// RayCast clips the ray against each edge plane, tracking the entering and leaving fractions.
func (poly *PolyShape) RayCast(input RayCastInput, xf Transform) (RayCastOutput, bool) {
	var output RayCastOutput

	p1 := xf.Unapply(input.P1)
	p2 := xf.Unapply(input.P2)
	d := p2.Sub(p1)

	lower, upper := 0.0, input.MaxFraction
	index := -1

	for i := 0; i < poly.count; i++ {
		// p = p1 + a * d
		// dot(normal, p - v) = 0
		// dot(normal, p1 - v) + a * dot(normal, d) = 0
		numerator := poly.normals[i].Dot(poly.verts[i].Sub(p1))
		denominator := poly.normals[i].Dot(d)

		if denominator == 0 {
			if numerator < 0 {
				return output, false
			}
		} else {
			if denominator < 0 && numerator < lower*denominator {
				// entering this half space
				lower = numerator / denominator
				index = i
			} else if denominator > 0 && numerator < upper*denominator {
				// leaving this half space
				upper = numerator / denominator
			}
		}

		if upper < lower {
			return output, false
		}
	}

	assert(0 <= lower && lower <= input.MaxFraction, "Ray fraction out of range")

	if index >= 0 {
		output.Fraction = lower
		output.Normal = xf.Q.Rotate(poly.normals[index])
		return output, true
	}
	return output, false
}

func (poly *PolyShape) distanceProxy() DistanceProxy {
	proxy := DistanceProxy{count: poly.count, radius: poly.r}
	copy(proxy.vertices[:], poly.verts[:poly.count])
	return proxy
}
