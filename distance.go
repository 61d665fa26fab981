package physics

import "math"

// DistanceProxy is a convex vertex cloud with a radius, the form GJK works on.
type DistanceProxy struct {
	vertices [MAX_POLYGON_VERTICES]Vector
	count    int
	radius   float64
}

func NewDistanceProxy(shape Shape) DistanceProxy {
	return shape.distanceProxy()
}

func (proxy *DistanceProxy) VertexCount() int {
	return proxy.count
}

func (proxy *DistanceProxy) Vertex(index int) Vector {
	assert(0 <= index && index < proxy.count, "Proxy vertex index out of range")
	return proxy.vertices[index]
}

// GetSupport returns the index of the vertex furthest along d.
func (proxy *DistanceProxy) GetSupport(d Vector) int {
	bestIndex := 0
	bestValue := proxy.vertices[0].Dot(d)
	for i := 1; i < proxy.count; i++ {
		value := proxy.vertices[i].Dot(d)
		if value > bestValue {
			bestIndex = i
			bestValue = value
		}
	}
	return bestIndex
}

// SimplexCache warm starts GJK with the support indices of the previous call.
type SimplexCache struct {
	Metric         float64
	Count          int
	IndexA, IndexB [3]int
}

type DistanceInput struct {
	ProxyA, ProxyB         DistanceProxy
	TransformA, TransformB Transform
	UseRadii               bool
}

type DistanceOutput struct {
	// closest point on A and on B
	PointA, PointB Vector
	Distance       float64
	// number of GJK iterations used
	Iterations int
}

type simplexVertex struct {
	wA, wB Vector // support points on A and B
	w      Vector // wB - wA
	a      float64
	indexA int
	indexB int
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

func (s *simplex) readCache(cache *SimplexCache, proxyA *DistanceProxy, xfA Transform, proxyB *DistanceProxy, xfB Transform) {
	assert(cache.Count <= 3, "Simplex cache overflow")

	s.count = cache.Count
	for i := 0; i < s.count; i++ {
		v := &s.v[i]
		v.indexA = cache.IndexA[i]
		v.indexB = cache.IndexB[i]
		v.wA = xfA.Apply(proxyA.Vertex(v.indexA))
		v.wB = xfB.Apply(proxyB.Vertex(v.indexB))
		v.w = v.wB.Sub(v.wA)
		v.a = 0
	}

	// flush the cache if the simplex changed shape a lot
	if s.count > 1 {
		metric1 := cache.Metric
		metric2 := s.metric()
		if metric2 < 0.5*metric1 || 2.0*metric1 < metric2 || metric2 < EPSILON {
			s.count = 0
		}
	}

	if s.count == 0 {
		v := &s.v[0]
		v.indexA = 0
		v.indexB = 0
		v.wA = xfA.Apply(proxyA.Vertex(0))
		v.wB = xfB.Apply(proxyB.Vertex(0))
		v.w = v.wB.Sub(v.wA)
		v.a = 1
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Metric = s.metric()
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = s.v[i].indexA
		cache.IndexB[i] = s.v[i].indexB
	}
}

func (s *simplex) searchDirection() Vector {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e12 := s.v[1].w.Sub(s.v[0].w)
		sgn := e12.Cross(s.v[0].w.Neg())
		if sgn > 0 {
			// origin is left of e12
			return CrossScalar(1, e12)
		}
		return e12.CrossScalar(1)
	}
	panic("Invalid simplex")
}

func (s *simplex) witnessPoints() (pA, pB Vector) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA = s.v[0].wA.Mult(s.v[0].a).Add(s.v[1].wA.Mult(s.v[1].a))
		pB = s.v[0].wB.Mult(s.v[0].a).Add(s.v[1].wB.Mult(s.v[1].a))
		return pA, pB
	case 3:
		pA = s.v[0].wA.Mult(s.v[0].a).Add(s.v[1].wA.Mult(s.v[1].a)).Add(s.v[2].wA.Mult(s.v[2].a))
		return pA, pA
	}
	panic("Invalid simplex")
}

func (s *simplex) metric() float64 {
	switch s.count {
	case 1:
		return 0
	case 2:
		return s.v[0].w.Distance(s.v[1].w)
	case 3:
		return s.v[1].w.Sub(s.v[0].w).Cross(s.v[2].w.Sub(s.v[0].w))
	}
	panic("Invalid simplex")
}

// solve2 finds the closest point on the segment w1-w2 to the origin using barycentric
// coordinates, dropping the vertex whose region contains the origin.
func (s *simplex) solve2() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	e12 := w2.Sub(w1)

	// w1 region
	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	// w2 region
	d12_1 := w2.Dot(e12)
	if d12_1 <= 0 {
		s.v[1].a = 1
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	// must be in e12 region
	inv := 1.0 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 tests the vertex, edge and interior Voronoi regions of the triangle.
func (s *simplex) solve3() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	w3 := s.v[2].w

	// edge12
	e12 := w2.Sub(w1)
	d12_1 := w2.Dot(e12)
	d12_2 := -w1.Dot(e12)

	// edge13
	e13 := w3.Sub(w1)
	d13_1 := w3.Dot(e13)
	d13_2 := -w1.Dot(e13)

	// edge23
	e23 := w3.Sub(w2)
	d23_1 := w3.Dot(e23)
	d23_2 := -w2.Dot(e23)

	// triangle123
	n123 := e12.Cross(e13)
	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	switch {
	case d12_2 <= 0 && d13_2 <= 0:
		// w1 region
		s.v[0].a = 1
		s.count = 1
	case d12_1 > 0 && d12_2 > 0 && d123_3 <= 0:
		// e12
		inv := 1.0 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
	case d13_1 > 0 && d13_2 > 0 && d123_2 <= 0:
		// e13
		inv := 1.0 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[2].a = d13_2 * inv
		s.count = 2
		s.v[1] = s.v[2]
	case d12_1 <= 0 && d23_2 <= 0:
		// w2 region
		s.v[1].a = 1
		s.count = 1
		s.v[0] = s.v[1]
	case d13_1 <= 0 && d23_1 <= 0:
		// w3 region
		s.v[2].a = 1
		s.count = 1
		s.v[0] = s.v[2]
	case d23_1 > 0 && d23_2 > 0 && d123_1 <= 0:
		// e23
		inv := 1.0 / (d23_1 + d23_2)
		s.v[1].a = d23_1 * inv
		s.v[2].a = d23_2 * inv
		s.count = 2
		s.v[0] = s.v[2]
	default:
		// must be in triangle123
		inv := 1.0 / (d123_1 + d123_2 + d123_3)
		s.v[0].a = d123_1 * inv
		s.v[1].a = d123_2 * inv
		s.v[2].a = d123_3 * inv
		s.count = 3
	}
}

// Distance computes the closest points between two convex proxies with GJK. The cache is read
// on entry and written on exit, so callers reuse it across calls on the same pair.
func Distance(output *DistanceOutput, cache *SimplexCache, input *DistanceInput) {
	proxyA := &input.ProxyA
	proxyB := &input.ProxyB
	xfA := input.TransformA
	xfB := input.TransformB

	var s simplex
	s.readCache(cache, proxyA, xfA, proxyB, xfB)

	// vertices of the last simplex, used to detect cycling
	var saveA, saveB [3]int

	iter := 0
	for iter < MAX_GJK_ITERATIONS {
		saveCount := s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.v[i].indexA
			saveB[i] = s.v[i].indexB
		}

		switch s.count {
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}

		// the origin is inside the triangle
		if s.count == 3 {
			break
		}

		d := s.searchDirection()

		// the origin is probably on the simplex, avoid normalizing a tiny direction
		if d.LengthSq() < EPSILON*EPSILON {
			break
		}

		vertex := &s.v[s.count]
		vertex.indexA = proxyA.GetSupport(xfA.Q.Unrotate(d.Neg()))
		vertex.wA = xfA.Apply(proxyA.Vertex(vertex.indexA))
		vertex.indexB = proxyB.GetSupport(xfB.Q.Unrotate(d))
		vertex.wB = xfB.Apply(proxyB.Vertex(vertex.indexB))
		vertex.w = vertex.wB.Sub(vertex.wA)

		iter++

		// a repeated support point means no progress
		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.indexA == saveA[i] && vertex.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		s.count++
	}

	output.PointA, output.PointB = s.witnessPoints()
	output.Distance = output.PointA.Distance(output.PointB)
	output.Iterations = iter

	s.writeCache(cache)

	if input.UseRadii {
		rA := proxyA.radius
		rB := proxyB.radius

		if output.Distance > rA+rB && output.Distance > EPSILON {
			// shapes are still not overlapped, move the witness points to the outer surface
			output.Distance -= rA + rB
			normal := output.PointB.Sub(output.PointA).Normalize()
			output.PointA = output.PointA.Add(normal.Mult(rA))
			output.PointB = output.PointB.Sub(normal.Mult(rB))
		} else {
			// shapes are overlapped when radii are considered, use the middle point
			p := output.PointA.Lerp(output.PointB, 0.5)
			output.PointA = p
			output.PointB = p
			output.Distance = 0
		}
	}

	output.Distance = math.Max(output.Distance, 0)
}
