package physics

// collideEdgeAndCircle picks the Voronoi region of the segment the circle center falls in:
// either end point gives a circles manifold, the interior gives a face manifold.
func collideEdgeAndCircle(m *Manifold, edgeA *Segment, xfA Transform, circleB *Circle, xfB Transform) {
	m.PointCount = 0

	// circle in the frame of the edge
	Q := xfA.Unapply(xfB.Apply(circleB.p))

	A, B := edgeA.a, edgeA.b
	e := B.Sub(A)

	// barycentric coordinates
	u := e.Dot(B.Sub(Q))
	v := e.Dot(Q.Sub(A))

	radius := edgeA.r + circleB.r

	id := ContactID{IndexB: 0, TypeB: FEATURE_VERTEX}

	var P Vector
	switch {
	case v <= 0:
		// region A
		P = A
		if Q.DistanceSq(P) > radius*radius {
			return
		}
		id.IndexA = 0
		id.TypeA = FEATURE_VERTEX
	case u <= 0:
		// region B
		P = B
		if Q.DistanceSq(P) > radius*radius {
			return
		}
		id.IndexA = 1
		id.TypeA = FEATURE_VERTEX
	default:
		// region AB
		den := e.LengthSq()
		assert(den > 0, "Degenerate segment")
		P = A.Mult(u).Add(B.Mult(v)).Mult(1.0 / den)
		if Q.DistanceSq(P) > radius*radius {
			return
		}

		n := Vector{-e.Y, e.X}
		if n.Dot(Q.Sub(A)) < 0 {
			n = n.Neg()
		}

		id.IndexA = 0
		id.TypeA = FEATURE_FACE
		m.PointCount = 1
		m.Type = MANIFOLD_FACE_A
		m.LocalNormal = n.Normalize()
		m.LocalPoint = A
		m.Points[0].ID = id
		m.Points[0].LocalPoint = circleB.p
		return
	}

	m.PointCount = 1
	m.Type = MANIFOLD_CIRCLES
	m.LocalNormal = Vector{}
	m.LocalPoint = P
	m.Points[0].ID = id
	m.Points[0].LocalPoint = circleB.p
}

// collideEdgeAndPolygon clips the polygon against the segment treated as a two sided polygon.
func collideEdgeAndPolygon(m *Manifold, edgeA *Segment, xfA Transform, polyB *PolyShape, xfB Transform) {
	poly := edgeA.polygon()
	poly.r = edgeA.r
	collidePolygons(m, &poly, xfA, polyB, xfB)
}
