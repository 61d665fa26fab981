package physics

// findMaxSeparation finds the edge normal of poly1 with the largest separation from poly2.
func findMaxSeparation(poly1 *PolyShape, xf1 Transform, poly2 *PolyShape, xf2 Transform) (edgeIndex int, maxSeparation float64) {
	n1s := &poly1.normals
	v1s := &poly1.verts
	v2s := &poly2.verts
	xf := xf2.MulT(xf1)

	maxSeparation = -INFINITY
	for i := 0; i < poly1.count; i++ {
		// poly1 normal and vertex in the frame of poly2
		n := xf.Q.Rotate(n1s[i])
		v1 := xf.Apply(v1s[i])

		// deepest point of poly2 along n
		si := INFINITY
		for j := 0; j < poly2.count; j++ {
			sij := n.Dot(v2s[j].Sub(v1))
			if sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			edgeIndex = i
		}
	}
	return edgeIndex, maxSeparation
}

// findIncidentEdge finds the edge of poly2 most anti-parallel to the reference edge of poly1.
func findIncidentEdge(poly1 *PolyShape, xf1 Transform, edge1 int, poly2 *PolyShape, xf2 Transform) (c [2]clipVertex) {
	assert(0 <= edge1 && edge1 < poly1.count, "Reference edge out of range")

	// reference edge normal in the frame of poly2
	normal1 := xf2.Q.Unrotate(xf1.Q.Rotate(poly1.normals[edge1]))

	index := 0
	minDot := INFINITY
	for i := 0; i < poly2.count; i++ {
		dot := normal1.Dot(poly2.normals[i])
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	i1 := index
	i2 := i1 + 1
	if i2 >= poly2.count {
		i2 = 0
	}

	c[0].v = xf2.Apply(poly2.verts[i1])
	c[0].id = ContactID{IndexA: uint8(edge1), IndexB: uint8(i1), TypeA: FEATURE_FACE, TypeB: FEATURE_VERTEX}

	c[1].v = xf2.Apply(poly2.verts[i2])
	c[1].id = ContactID{IndexA: uint8(edge1), IndexB: uint8(i2), TypeA: FEATURE_FACE, TypeB: FEATURE_VERTEX}
	return c
}

// collidePolygons finds the reference face with the smallest penetration, takes the incident
// edge of the other polygon and clips it against the side planes of the reference face.
// The reference face is on A unless B's is better by more than a small tolerance, which keeps
// the choice stable from frame to frame.
func collidePolygons(m *Manifold, polyA *PolyShape, xfA Transform, polyB *PolyShape, xfB Transform) {
	m.PointCount = 0
	totalRadius := polyA.r + polyB.r

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return
	}

	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return
	}

	var poly1, poly2 *PolyShape
	var xf1, xf2 Transform
	var edge1 int
	var flip bool
	const k_tol = 0.1 * LINEAR_SLOP

	if separationB > separationA+k_tol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		m.Type = MANIFOLD_FACE_B
		flip = true
	} else {
		poly1, poly2 = polyA, polyB
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
		m.Type = MANIFOLD_FACE_A
		flip = false
	}

	incidentEdge := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	iv1 := edge1
	iv2 := edge1 + 1
	if iv2 >= poly1.count {
		iv2 = 0
	}

	v11 := poly1.verts[iv1]
	v12 := poly1.verts[iv2]

	localTangent := v12.Sub(v11).Normalize()
	localNormal := localTangent.CrossScalar(1)
	planePoint := v11.Lerp(v12, 0.5)

	tangent := xf1.Q.Rotate(localTangent)
	normal := tangent.CrossScalar(1)

	v11 = xf1.Apply(v11)
	v12 = xf1.Apply(v12)

	// face offset
	frontOffset := normal.Dot(v11)

	// side offsets, extended by the polytope skins
	sideOffset1 := -tangent.Dot(v11) + totalRadius
	sideOffset2 := tangent.Dot(v12) + totalRadius

	clipPoints1, np := clipSegmentToLine(incidentEdge, tangent.Neg(), sideOffset1, iv1)
	if np < 2 {
		return
	}

	clipPoints2, np := clipSegmentToLine(clipPoints1, tangent, sideOffset2, iv2)
	if np < 2 {
		return
	}

	m.LocalNormal = localNormal
	m.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < MAX_MANIFOLD_POINTS; i++ {
		separation := normal.Dot(clipPoints2[i].v) - frontOffset

		if separation <= totalRadius {
			cp := &m.Points[pointCount]
			cp.LocalPoint = xf2.Unapply(clipPoints2[i].v)
			cp.ID = clipPoints2[i].id
			if flip {
				cp.ID = cp.ID.swap()
			}
			pointCount++
		}
	}

	m.PointCount = pointCount
}
