package physics

func collideCircles(m *Manifold, circleA *Circle, xfA Transform, circleB *Circle, xfB Transform) {
	m.PointCount = 0

	pA := xfA.Apply(circleA.p)
	pB := xfB.Apply(circleB.p)

	radius := circleA.r + circleB.r
	if pA.DistanceSq(pB) > radius*radius {
		return
	}

	m.Type = MANIFOLD_CIRCLES
	m.LocalPoint = circleA.p
	m.LocalNormal = Vector{}
	m.PointCount = 1

	m.Points[0].LocalPoint = circleB.p
	m.Points[0].ID = ContactID{}
}

func collidePolygonAndCircle(m *Manifold, polyA *PolyShape, xfA Transform, circleB *Circle, xfB Transform) {
	m.PointCount = 0

	// circle position in the frame of the polygon
	c := xfB.Apply(circleB.p)
	cLocal := xfA.Unapply(c)

	// find the min separating edge
	normalIndex := 0
	separation := -INFINITY
	radius := polyA.r + circleB.r
	vertexCount := polyA.count
	vertices := &polyA.verts
	normals := &polyA.normals

	for i := 0; i < vertexCount; i++ {
		s := normals[i].Dot(cLocal.Sub(vertices[i]))
		if s > radius {
			// early out
			return
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	// vertices that subtend the incident face
	vertIndex1 := normalIndex
	vertIndex2 := vertIndex1 + 1
	if vertIndex2 >= vertexCount {
		vertIndex2 = 0
	}
	v1 := vertices[vertIndex1]
	v2 := vertices[vertIndex2]

	// center is inside the polygon
	if separation < EPSILON {
		m.PointCount = 1
		m.Type = MANIFOLD_FACE_A
		m.LocalNormal = normals[normalIndex]
		m.LocalPoint = v1.Lerp(v2, 0.5)
		m.Points[0].LocalPoint = circleB.p
		m.Points[0].ID = ContactID{}
		return
	}

	// compute barycentric coordinates
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0:
		if cLocal.DistanceSq(v1) > radius*radius {
			return
		}
		m.PointCount = 1
		m.Type = MANIFOLD_FACE_A
		m.LocalNormal = cLocal.Sub(v1).Normalize()
		m.LocalPoint = v1
	case u2 <= 0:
		if cLocal.DistanceSq(v2) > radius*radius {
			return
		}
		m.PointCount = 1
		m.Type = MANIFOLD_FACE_A
		m.LocalNormal = cLocal.Sub(v2).Normalize()
		m.LocalPoint = v2
	default:
		faceCenter := v1.Lerp(v2, 0.5)
		if cLocal.Sub(faceCenter).Dot(normals[vertIndex1]) > radius {
			return
		}
		m.PointCount = 1
		m.Type = MANIFOLD_FACE_A
		m.LocalNormal = normals[vertIndex1]
		m.LocalPoint = faceCenter
	}

	m.Points[0].LocalPoint = circleB.p
	m.Points[0].ID = ContactID{}
}
