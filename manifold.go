package physics

// Manifold types
const (
	MANIFOLD_CIRCLES = iota
	MANIFOLD_FACE_A
	MANIFOLD_FACE_B
)

// Contact feature types
const (
	FEATURE_VERTEX = iota
	FEATURE_FACE
)

// ContactID names the features that produced a contact point so that points can be matched
// across steps for warm starting.
type ContactID struct {
	IndexA, IndexB uint8
	TypeA, TypeB   uint8
}

func (id ContactID) Key() uint32 {
	return uint32(id.IndexA) | uint32(id.IndexB)<<8 | uint32(id.TypeA)<<16 | uint32(id.TypeB)<<24
}

func (id ContactID) swap() ContactID {
	return ContactID{
		IndexA: id.IndexB,
		IndexB: id.IndexA,
		TypeA:  id.TypeB,
		TypeB:  id.TypeA,
	}
}

// ManifoldPoint is a contact point local to the non reference shape. The impulses are carried
// between steps when the point's ID matches.
type ManifoldPoint struct {
	LocalPoint     Vector
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactID
}

// Manifold is the contact between two convex shapes, stored in local coordinates so it stays
// valid while the shapes move a little.
//
//   MANIFOLD_CIRCLES: LocalPoint is the center of circle A, points hold the center of B.
//   MANIFOLD_FACE_A: LocalPoint and LocalNormal describe the reference face on A, points are on B.
//   MANIFOLD_FACE_B: the same with the roles of A and B reversed.
type Manifold struct {
	Points      [MAX_MANIFOLD_POINTS]ManifoldPoint
	LocalNormal Vector
	LocalPoint  Vector
	Type        int
	PointCount  int
}

// WorldManifold is a manifold in world coordinates. The normal points from A to B and the
// points lie midway between the two surfaces.
type WorldManifold struct {
	Normal      Vector
	Points      [MAX_MANIFOLD_POINTS]Vector
	Separations [MAX_MANIFOLD_POINTS]float64
}

func (wm *WorldManifold) Initialize(m *Manifold, xfA Transform, radiusA float64, xfB Transform, radiusB float64) {
	if m.PointCount == 0 {
		return
	}

	switch m.Type {
	case MANIFOLD_CIRCLES:
		wm.Normal = Vector{1, 0}
		pointA := xfA.Apply(m.LocalPoint)
		pointB := xfB.Apply(m.Points[0].LocalPoint)
		if pointA.DistanceSq(pointB) > EPSILON*EPSILON {
			wm.Normal = pointB.Sub(pointA).Normalize()
		}

		cA := pointA.Add(wm.Normal.Mult(radiusA))
		cB := pointB.Sub(wm.Normal.Mult(radiusB))
		wm.Points[0] = cA.Lerp(cB, 0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case MANIFOLD_FACE_A:
		wm.Normal = xfA.Q.Rotate(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)

		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfB.Apply(m.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Mult(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Mult(radiusB))
			wm.Points[i] = cA.Lerp(cB, 0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case MANIFOLD_FACE_B:
		wm.Normal = xfB.Q.Rotate(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)

		for i := 0; i < m.PointCount; i++ {
			clipPoint := xfA.Apply(m.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Mult(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Mult(radiusA))
			wm.Points[i] = cA.Lerp(cB, 0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}

		// ensure normal points from A to B
		wm.Normal = wm.Normal.Neg()
	}
}

// Negate flips the normal, for callers that see the pair in the opposite order.
func (wm *WorldManifold) Negate() {
	wm.Normal = wm.Normal.Neg()
}
