package physics

// shapePriority orders shape classes for the narrow-phase. The shape with the lower priority
// is always the A shape of a pair: segments, then polygons, then circles.
func shapePriority(s Shape) int {
	switch s.Class() {
	case SHAPE_CLASS_SEGMENT:
		return 0
	case SHAPE_CLASS_POLY:
		return 1
	case SHAPE_CLASS_CIRCLE:
		return 2
	}
	panic("Unknown shape class")
}

// needsSwap reports whether a pair given as (a, b) must be handled as (b, a).
func needsSwap(a, b Shape) bool {
	return shapePriority(a) > shapePriority(b)
}

// Collide computes the contact manifold between two shapes. Pairs given out of order are
// handled as (b, a) and swapped is true: the manifold then describes b as shape A, and a caller
// wanting its own order negates the world normal.
func Collide(m *Manifold, a Shape, xfA Transform, b Shape, xfB Transform) (swapped bool) {
	if needsSwap(a, b) {
		a, b = b, a
		xfA, xfB = xfB, xfA
		swapped = true
	}

	m.PointCount = 0

	switch sa := a.(type) {
	case *Segment:
		switch sb := b.(type) {
		case *Segment:
			// segments have no volume
		case *PolyShape:
			collideEdgeAndPolygon(m, sa, xfA, sb, xfB)
		case *Circle:
			collideEdgeAndCircle(m, sa, xfA, sb, xfB)
		default:
			panic("Unknown shape type")
		}
	case *PolyShape:
		switch sb := b.(type) {
		case *PolyShape:
			collidePolygons(m, sa, xfA, sb, xfB)
		case *Circle:
			collidePolygonAndCircle(m, sa, xfA, sb, xfB)
		default:
			panic("Unknown shape type")
		}
	case *Circle:
		collideCircles(m, sa, xfA, b.(*Circle), xfB)
	default:
		panic("Unknown shape type")
	}
	return swapped
}

// TestOverlap reports whether two shapes, including their skins, touch.
func TestOverlap(a Shape, xfA Transform, b Shape, xfB Transform) bool {
	input := DistanceInput{
		ProxyA:     a.distanceProxy(),
		ProxyB:     b.distanceProxy(),
		TransformA: xfA,
		TransformB: xfB,
		UseRadii:   true,
	}

	var cache SimplexCache
	var output DistanceOutput
	Distance(&output, &cache, &input)

	return output.Distance < 10.0*EPSILON
}

type clipVertex struct {
	v  Vector
	id ContactID
}

// clipSegmentToLine keeps the part of the segment behind the plane dot(normal, x) = offset.
func clipSegmentToLine(vIn [2]clipVertex, normal Vector, offset float64, vertexIndexA int) (vOut [2]clipVertex, count int) {
	// distance of the end points to the line
	distance0 := normal.Dot(vIn[0].v) - offset
	distance1 := normal.Dot(vIn[1].v) - offset

	// points behind the plane
	if distance0 <= 0 {
		vOut[count] = vIn[0]
		count++
	}
	if distance1 <= 0 {
		vOut[count] = vIn[1]
		count++
	}

	// points on different sides of the plane
	if distance0*distance1 < 0 {
		interp := distance0 / (distance0 - distance1)
		vOut[count].v = vIn[0].v.Add(vIn[1].v.Sub(vIn[0].v).Mult(interp))

		// vertex A is hitting edge B
		vOut[count].id = ContactID{
			IndexA: uint8(vertexIndexA),
			IndexB: vIn[0].id.IndexB,
			TypeA:  FEATURE_VERTEX,
			TypeB:  FEATURE_FACE,
		}
		count++
	}

	return vOut, count
}
