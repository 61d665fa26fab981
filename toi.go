package physics

import "math"

// TOI output states
const (
	TOI_STATE_UNKNOWN = iota
	TOI_STATE_FAILED
	TOI_STATE_OVERLAPPED
	TOI_STATE_TOUCHING
	TOI_STATE_SEPARATED
)

// TOIInput sweeps two proxies over [0, TMax] of their sweeps.
type TOIInput struct {
	ProxyA, ProxyB DistanceProxy
	SweepA, SweepB Sweep
	TMax           float64
}

type TOIOutput struct {
	State int
	T     float64
}

// Separation function types
const (
	separationPoints = iota
	separationFaceA
	separationFaceB
)

type separationFunction struct {
	proxyA, proxyB *DistanceProxy
	sweepA, sweepB Sweep
	kind           int
	localPoint     Vector
	axis           Vector
}

func (f *separationFunction) initialize(cache *SimplexCache, proxyA *DistanceProxy, sweepA Sweep, proxyB *DistanceProxy, sweepB Sweep, t1 float64) float64 {
	f.proxyA = proxyA
	f.proxyB = proxyB
	assert(0 < cache.Count && cache.Count < 3, "Separation function needs a 1 or 2 point simplex")

	f.sweepA = sweepA
	f.sweepB = sweepB

	xfA := f.sweepA.GetTransform(t1)
	xfB := f.sweepB.GetTransform(t1)

	if cache.Count == 1 {
		f.kind = separationPoints
		localPointA := proxyA.Vertex(cache.IndexA[0])
		localPointB := proxyB.Vertex(cache.IndexB[0])
		pointA := xfA.Apply(localPointA)
		pointB := xfB.Apply(localPointB)
		var s float64
		f.axis, s = pointB.Sub(pointA).NormalizeLength()
		return s
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// two points on B and one on A
		f.kind = separationFaceB
		localPointB1 := proxyB.Vertex(cache.IndexB[0])
		localPointB2 := proxyB.Vertex(cache.IndexB[1])

		f.axis = localPointB2.Sub(localPointB1).CrossScalar(1).Normalize()
		normal := xfB.Q.Rotate(f.axis)

		f.localPoint = localPointB1.Lerp(localPointB2, 0.5)
		pointB := xfB.Apply(f.localPoint)

		localPointA := proxyA.Vertex(cache.IndexA[0])
		pointA := xfA.Apply(localPointA)

		s := pointA.Sub(pointB).Dot(normal)
		if s < 0 {
			f.axis = f.axis.Neg()
			s = -s
		}
		return s
	}

	// two points on A and one or two points on B
	f.kind = separationFaceA
	localPointA1 := f.proxyA.Vertex(cache.IndexA[0])
	localPointA2 := f.proxyA.Vertex(cache.IndexA[1])

	f.axis = localPointA2.Sub(localPointA1).CrossScalar(1).Normalize()
	normal := xfA.Q.Rotate(f.axis)

	f.localPoint = localPointA1.Lerp(localPointA2, 0.5)
	pointA := xfA.Apply(f.localPoint)

	localPointB := f.proxyB.Vertex(cache.IndexB[0])
	pointB := xfB.Apply(localPointB)

	s := pointB.Sub(pointA).Dot(normal)
	if s < 0 {
		f.axis = f.axis.Neg()
		s = -s
	}
	return s
}

// findMinSeparation returns the deepest points along the separating axis at time t.
func (f *separationFunction) findMinSeparation(t float64) (indexA, indexB int, separation float64) {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case separationPoints:
		axisA := xfA.Q.Unrotate(f.axis)
		axisB := xfB.Q.Unrotate(f.axis.Neg())

		indexA = f.proxyA.GetSupport(axisA)
		indexB = f.proxyB.GetSupport(axisB)

		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))

		return indexA, indexB, pointB.Sub(pointA).Dot(f.axis)

	case separationFaceA:
		normal := xfA.Q.Rotate(f.axis)
		pointA := xfA.Apply(f.localPoint)

		axisB := xfB.Q.Unrotate(normal.Neg())

		indexA = -1
		indexB = f.proxyB.GetSupport(axisB)

		pointB := xfB.Apply(f.proxyB.Vertex(indexB))

		return indexA, indexB, pointB.Sub(pointA).Dot(normal)

	case separationFaceB:
		normal := xfB.Q.Rotate(f.axis)
		pointB := xfB.Apply(f.localPoint)

		axisA := xfA.Q.Unrotate(normal.Neg())

		indexB = -1
		indexA = f.proxyA.GetSupport(axisA)

		pointA := xfA.Apply(f.proxyA.Vertex(indexA))

		return indexA, indexB, pointA.Sub(pointB).Dot(normal)
	}
	panic("Unknown separation function")
}

// evaluate measures the separation of the given support points at time t.
func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case separationPoints:
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(f.axis)

	case separationFaceA:
		normal := xfA.Q.Rotate(f.axis)
		pointA := xfA.Apply(f.localPoint)
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(normal)

	case separationFaceB:
		normal := xfB.Q.Rotate(f.axis)
		pointB := xfB.Apply(f.localPoint)
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		return pointA.Sub(pointB).Dot(normal)
	}
	panic("Unknown separation function")
}

// TimeOfImpact computes the upper bound on the time before two shapes penetrate, using
// conservative advancement on a separating axis. Time is expressed as a fraction in [0, TMax]
// of the sweeps. The target separation keeps a little overlap so the contact is created, but
// not enough to let the shapes tunnel.
func TimeOfImpact(output *TOIOutput, input *TOIInput) {
	output.State = TOI_STATE_UNKNOWN
	output.T = input.TMax

	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	sweepA := input.SweepA
	sweepB := input.SweepB

	// large rotations make the root finder fail, so normalize the sweep angles
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.radius + proxyB.radius
	target := math.Max(LINEAR_SLOP, totalRadius-3.0*LINEAR_SLOP)
	tolerance := 0.25 * LINEAR_SLOP
	assert(target > tolerance, "TOI target below tolerance")

	t1 := 0.0
	iter := 0

	// prepare input for the distance query
	var cache SimplexCache
	distanceInput := DistanceInput{
		ProxyA:   input.ProxyA,
		ProxyB:   input.ProxyB,
		UseRadii: false,
	}

	var fcn separationFunction

	// the outer loop progressively attempts to compute new separating axes
	for {
		distanceInput.TransformA = sweepA.GetTransform(t1)
		distanceInput.TransformB = sweepB.GetTransform(t1)

		// get the distance between the shapes, and the support points that form the axis
		var distanceOutput DistanceOutput
		Distance(&distanceOutput, &cache, &distanceInput)

		// the shapes are overlapped, give up on continuous collision
		if distanceOutput.Distance <= 0 {
			output.State = TOI_STATE_OVERLAPPED
			output.T = 0
			break
		}

		// close enough, a contact takes over from here
		if distanceOutput.Distance < target+tolerance {
			output.State = TOI_STATE_TOUCHING
			output.T = t1
			break
		}

		fcn.initialize(&cache, proxyA, sweepA, proxyB, sweepB, t1)

		// resolve the deepest point, repeating for the other vertices the axis exposes
		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			indexA, indexB, s2 := fcn.findMinSeparation(t2)

			// final configuration separated
			if s2 > target+tolerance {
				output.State = TOI_STATE_SEPARATED
				output.T = tMax
				done = true
				break
			}

			// separation within tolerance, advance and look for a new axis
			if s2 > target-tolerance {
				t1 = t2
				break
			}

			s1 := fcn.evaluate(indexA, indexB, t1)

			// the root finder needs s1 above target and s2 below, bad input otherwise
			if s1 < target-tolerance {
				output.State = TOI_STATE_FAILED
				output.T = t1
				done = true
				break
			}

			// already at the target
			if s1 <= target+tolerance {
				output.State = TOI_STATE_TOUCHING
				output.T = t1
				done = true
				break
			}

			// 1D root of f(t) - target = 0, alternating false position and bisection
			rootIterCount := 0
			a1, a2 := t1, t2
			for {
				var t float64
				if rootIterCount&1 != 0 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				rootIterCount++

				s := fcn.evaluate(indexA, indexB, t)

				if math.Abs(s-target) < tolerance {
					t2 = t
					break
				}

				// keep the bracket
				if s > target {
					a1 = t
					s1 = s
				} else {
					a2 = t
					s2 = s
				}

				if rootIterCount == MAX_TOI_ROOT_ITERATIONS {
					break
				}
			}

			pushBackIter++
			if pushBackIter == MAX_POLYGON_VERTICES {
				break
			}
		}

		iter++

		if done {
			break
		}

		if iter == MAX_TOI_OUTER_ITERATIONS {
			// root finder got stuck, report the last safe time
			output.State = TOI_STATE_FAILED
			output.T = t1
			break
		}
	}
}
