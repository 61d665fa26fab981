package physics

import (
	"math"
	"testing"
)

func worldManifold(m *Manifold, a Shape, xfA Transform, b Shape, xfB Transform) WorldManifold {
	var wm WorldManifold
	wm.Initialize(m, xfA, a.Radius(), xfB, b.Radius())
	return wm
}

func nearTol(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestCollideBoxes(t *testing.T) {
	big := NewBox(1, 1)
	small := NewBox(0.5, 0.5)
	xfBig := NewTransformIdentity()
	xfSmall := NewTransform(Vector{0, 1.4}, 0)

	var m Manifold
	if Collide(&m, big, xfBig, small, xfSmall) {
		t.Fatal("two polygons never swap")
	}
	if m.PointCount != 2 {
		t.Fatalf("expected 2 points, got %d", m.PointCount)
	}
	if m.Type != MANIFOLD_FACE_A {
		t.Errorf("expected the big box to be the reference, got type %d", m.Type)
	}

	wm := worldManifold(&m, big, xfBig, small, xfSmall)
	if !nearVector(wm.Normal, Vector{0, 1}) {
		t.Errorf("normal %v", wm.Normal)
	}

	xs := map[float64]bool{}
	for i := 0; i < m.PointCount; i++ {
		p := wm.Points[i]
		if !near(p.Y, 0.95) {
			t.Errorf("point %d at %v, expected midway between the surfaces", i, p)
		}
		if !near(wm.Separations[i], -0.1-2*POLYGON_RADIUS) {
			t.Errorf("separation %v", wm.Separations[i])
		}
		xs[math.Round(p.X*1e6)/1e6] = true
	}
	if !xs[0.5] || !xs[-0.5] {
		t.Errorf("points %v", wm.Points)
	}
}

func TestCollideBoxesSymmetric(t *testing.T) {
	a := NewBox(1, 0.5)
	b := NewOrientedBox(0.6, 0.3, Vector{0.1, 0}, 0.2)
	xfA := NewTransform(Vector{0.3, -0.2}, 0.1)
	xfB := NewTransform(Vector{0.5, 0.6}, -0.3)

	var mAB, mBA Manifold
	Collide(&mAB, a, xfA, b, xfB)
	Collide(&mBA, b, xfB, a, xfA)

	if mAB.PointCount == 0 || mAB.PointCount != mBA.PointCount {
		t.Fatalf("point counts %d and %d", mAB.PointCount, mBA.PointCount)
	}

	wmAB := worldManifold(&mAB, a, xfA, b, xfB)
	wmBA := worldManifold(&mBA, b, xfB, a, xfA)

	if !nearTol(wmAB.Normal.Dot(wmBA.Normal), -1, 1e-6) {
		t.Errorf("normals %v and %v should be opposite", wmAB.Normal, wmBA.Normal)
	}

	// the same world points, in any order, with the same separations
	for i := 0; i < mAB.PointCount; i++ {
		found := false
		for j := 0; j < mBA.PointCount; j++ {
			if wmAB.Points[i].Near(wmBA.Points[j], 1e-3) && nearTol(wmAB.Separations[i], wmBA.Separations[j], 1e-3) {
				found = true
			}
		}
		if !found {
			t.Errorf("point %v has no match in %v", wmAB.Points[i], wmBA.Points)
		}
	}
}

func TestCollideBoxesContactIDsPersist(t *testing.T) {
	ground := NewBox(5, 0.5)
	box := NewBox(0.5, 0.5)
	xfGround := NewTransformIdentity()

	var m1, m2 Manifold
	Collide(&m1, ground, xfGround, box, NewTransform(Vector{0, 0.99}, 0))
	Collide(&m2, ground, xfGround, box, NewTransform(Vector{0.01, 0.98}, 0.001))

	if m1.PointCount != 2 || m2.PointCount != 2 {
		t.Fatalf("point counts %d and %d", m1.PointCount, m2.PointCount)
	}
	for i := 0; i < 2; i++ {
		if m1.Points[i].ID.Key() != m2.Points[i].ID.Key() {
			t.Errorf("point %d changed id after a small move", i)
		}
	}
	if m1.Points[0].ID.Key() == m1.Points[1].ID.Key() {
		t.Error("the two points share an id")
	}
}

func TestCollideSeparatedBoxes(t *testing.T) {
	var m Manifold
	Collide(&m, NewBox(1, 1), NewTransformIdentity(), NewBox(1, 1), NewTransform(Vector{2.5, 0}, 0))
	if m.PointCount != 0 {
		t.Errorf("expected no points, got %d", m.PointCount)
	}
}

func TestCollideCircles(t *testing.T) {
	a := NewCircle(1, Vector{})
	b := NewCircle(1, Vector{})
	xfA := NewTransformIdentity()
	xfB := NewTransform(Vector{1.5, 0}, 0)

	var m Manifold
	Collide(&m, a, xfA, b, xfB)
	if m.PointCount != 1 || m.Type != MANIFOLD_CIRCLES {
		t.Fatalf("manifold %+v", m)
	}

	wm := worldManifold(&m, a, xfA, b, xfB)
	if !nearVector(wm.Normal, Vector{1, 0}) {
		t.Errorf("normal %v", wm.Normal)
	}
	if !nearVector(wm.Points[0], Vector{0.75, 0}) {
		t.Errorf("point %v", wm.Points[0])
	}
	if !near(wm.Separations[0], -0.5) {
		t.Errorf("separation %v", wm.Separations[0])
	}

	Collide(&m, a, xfA, b, NewTransform(Vector{2.1, 0}, 0))
	if m.PointCount != 0 {
		t.Error("circles apart")
	}
}

func TestCollidePolygonAndCircle(t *testing.T) {
	box := NewBox(1, 1)
	circle := NewCircle(0.5, Vector{})
	xfBox := NewTransformIdentity()
	xfCircle := NewTransform(Vector{0, 1.3}, 0)

	var m Manifold
	if !Collide(&m, circle, xfCircle, box, xfBox) {
		t.Fatal("circle first should be swapped")
	}
	if m.PointCount != 1 {
		t.Fatalf("expected 1 point, got %d", m.PointCount)
	}

	// swapped: the polygon is shape A
	wm := worldManifold(&m, box, xfBox, circle, xfCircle)
	if !nearVector(wm.Normal, Vector{0, 1}) {
		t.Errorf("normal %v", wm.Normal)
	}
	if !near(wm.Separations[0], 0.3-0.5-POLYGON_RADIUS) {
		t.Errorf("separation %v", wm.Separations[0])
	}

	// a caller holding the pair in circle, box order sees the normal from the circle
	wm.Negate()
	if !nearVector(wm.Normal, Vector{0, -1}) {
		t.Errorf("negated normal %v", wm.Normal)
	}
}

func TestCollidePolygonAndCircleCorner(t *testing.T) {
	box := NewBox(1, 1)
	circle := NewCircle(0.5, Vector{})
	xfCircle := NewTransform(Vector{1.3, 1.3}, 0)

	var m Manifold
	Collide(&m, box, NewTransformIdentity(), circle, xfCircle)
	if m.PointCount != 1 {
		t.Fatalf("expected 1 point, got %d", m.PointCount)
	}

	wm := worldManifold(&m, box, NewTransformIdentity(), circle, xfCircle)
	want := Vector{1, 1}.Normalize()
	if !wm.Normal.Near(want, 1e-6) {
		t.Errorf("normal %v, want %v", wm.Normal, want)
	}
}

func TestCollideEdgeAndCircle(t *testing.T) {
	edge := NewSegment(Vector{-2, 0}, Vector{2, 0})
	circle := NewCircle(0.5, Vector{})
	xfEdge := NewTransformIdentity()

	var m Manifold
	xfCircle := NewTransform(Vector{0, 0.4}, 0)
	Collide(&m, edge, xfEdge, circle, xfCircle)
	if m.PointCount != 1 || m.Type != MANIFOLD_FACE_A {
		t.Fatalf("face region manifold %+v", m)
	}
	wm := worldManifold(&m, edge, xfEdge, circle, xfCircle)
	if !nearVector(wm.Normal, Vector{0, 1}) || !near(wm.Separations[0], 0.4-0.5-POLYGON_RADIUS) {
		t.Errorf("face region %+v", wm)
	}

	// below the edge the normal flips, segments are two sided
	xfCircle = NewTransform(Vector{0, -0.4}, 0)
	Collide(&m, edge, xfEdge, circle, xfCircle)
	wm = worldManifold(&m, edge, xfEdge, circle, xfCircle)
	if m.PointCount != 1 || !nearVector(wm.Normal, Vector{0, -1}) {
		t.Errorf("below the edge %+v", wm)
	}

	xfCircle = NewTransform(Vector{2.3, 0.1}, 0)
	Collide(&m, edge, xfEdge, circle, xfCircle)
	if m.PointCount != 1 || m.Type != MANIFOLD_CIRCLES {
		t.Fatalf("vertex region manifold %+v", m)
	}
	wm = worldManifold(&m, edge, xfEdge, circle, xfCircle)
	want := Vector{0.3, 0.1}.Normalize()
	if !wm.Normal.Near(want, 1e-6) {
		t.Errorf("vertex normal %v, want %v", wm.Normal, want)
	}

	xfCircle = NewTransform(Vector{3, 0}, 0)
	Collide(&m, edge, xfEdge, circle, xfCircle)
	if m.PointCount != 0 {
		t.Error("circle beyond the end of the edge")
	}
}

func TestCollideEdgeAndPolygon(t *testing.T) {
	edge := NewSegment(Vector{-2, 0}, Vector{2, 0})
	box := NewBox(0.5, 0.5)
	xfEdge := NewTransformIdentity()
	xfBox := NewTransform(Vector{0, 0.45}, 0)

	var m Manifold
	if !Collide(&m, box, xfBox, edge, xfEdge) {
		t.Error("polygon first should be swapped")
	}
	if m.PointCount != 2 {
		t.Fatalf("expected 2 points, got %d", m.PointCount)
	}

	wm := worldManifold(&m, edge, xfEdge, box, xfBox)
	if !nearVector(wm.Normal, Vector{0, 1}) {
		t.Errorf("normal %v", wm.Normal)
	}
	for i := 0; i < m.PointCount; i++ {
		if !near(wm.Separations[i], -0.05-2*POLYGON_RADIUS) {
			t.Errorf("separation %d: %v", i, wm.Separations[i])
		}
	}
}

func TestCollideEdges(t *testing.T) {
	var m Manifold
	a := NewSegment(Vector{-1, 0}, Vector{1, 0})
	b := NewSegment(Vector{0, -1}, Vector{0, 1})
	Collide(&m, a, NewTransformIdentity(), b, NewTransformIdentity())
	if m.PointCount != 0 {
		t.Error("segments never collide with each other")
	}
}

func TestTestOverlap(t *testing.T) {
	box := NewBox(1, 1)
	circle := NewCircle(0.5, Vector{})

	if !TestOverlap(box, NewTransformIdentity(), circle, NewTransform(Vector{1.4, 0}, 0)) {
		t.Error("shapes overlap")
	}
	if TestOverlap(box, NewTransformIdentity(), circle, NewTransform(Vector{1.6, 0}, 0)) {
		t.Error("shapes are apart")
	}
}

func TestDistance(t *testing.T) {
	input := DistanceInput{
		ProxyA:     NewDistanceProxy(NewBox(1, 1)),
		ProxyB:     NewDistanceProxy(NewBox(1, 1)),
		TransformA: NewTransformIdentity(),
		TransformB: NewTransform(Vector{4, 0.5}, 0),
	}

	var cache SimplexCache
	var output DistanceOutput
	Distance(&output, &cache, &input)

	if !near(output.Distance, 2) {
		t.Errorf("distance %v", output.Distance)
	}
	if !near(output.PointA.X, 1) || !near(output.PointB.X, 3) {
		t.Errorf("witness points %v %v", output.PointA, output.PointB)
	}

	// the cache warm starts the next query
	input.UseRadii = true
	Distance(&output, &cache, &input)
	if !near(output.Distance, 2-2*POLYGON_RADIUS) {
		t.Errorf("distance with radii %v", output.Distance)
	}
}

func TestTimeOfImpact(t *testing.T) {
	input := TOIInput{
		ProxyA: NewDistanceProxy(NewBox(1, 1)),
		ProxyB: NewDistanceProxy(NewCircle(0.5, Vector{})),
		SweepA: Sweep{},
		SweepB: Sweep{C0: Vector{-5, 0}, C: Vector{5, 0}},
		TMax:   1,
	}

	var output TOIOutput
	TimeOfImpact(&output, &input)

	if output.State != TOI_STATE_TOUCHING {
		t.Fatalf("state %d", output.State)
	}

	// the circle stops just inside the skin of the box
	target := 0.5 + POLYGON_RADIUS - 3*LINEAR_SLOP
	want := (-1 - target + 5) / 10
	if !nearTol(output.T, want, LINEAR_SLOP/10) {
		t.Errorf("toi %v, want %v", output.T, want)
	}

	input.SweepB = Sweep{C0: Vector{-5, 3}, C: Vector{5, 3}}
	TimeOfImpact(&output, &input)
	if output.State != TOI_STATE_SEPARATED {
		t.Errorf("a miss should separate, state %d", output.State)
	}
}
