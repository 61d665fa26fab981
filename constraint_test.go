package physics

import (
	"math"
	"testing"
)

func newBob(world *World, pos Vector) *Body {
	bob, _ := addBody(world, BODY_DYNAMIC, pos, NewCircle(0.25, Vector{}), 1)
	return bob
}

func TestPinJoint_Pendulum(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	pivot := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{0, 10}))
	bob := newBob(world, Vector{3, 10})
	joint := world.CreateJoint(NewPinJoint(pivot, bob, Vector{}, Vector{}))

	if dist := joint.Class.(*PinJoint).Dist; !near(dist, 3) {
		t.Fatalf("pin distance %v", dist)
	}

	lowest := bob.Position().Y
	for i := 0; i < 120; i++ {
		world.Step(timeStepHz, 8, 3)
		lowest = math.Min(lowest, bob.Position().Y)
		if d := bob.Position().Distance(Vector{0, 10}); math.Abs(d-3) > 0.05 {
			t.Fatalf("rod stretched to %v on step %d", d, i)
		}
	}
	if lowest > 7.1 {
		t.Errorf("the pendulum should swing through the bottom, lowest point %v", lowest)
	}
	if joint.Impulse() <= 0 {
		t.Error("the rod carries the bob")
	}
}

func TestPinJoint_SetDistWakesBodies(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	pivot := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{0, 10}))
	bob := newBob(world, Vector{0, 7})
	joint := world.CreateJoint(NewPinJoint(pivot, bob, Vector{}, Vector{}))
	bob.SetAwake(false)

	joint.Class.(*PinJoint).SetDist(2)
	if !bob.IsAwake() {
		t.Fatal("changing the rod length should wake the bob")
	}

	stepN(world, 120)
	if d := bob.Position().Distance(Vector{0, 10}); math.Abs(d-2) > 0.05 {
		t.Errorf("the rod should pull the bob in to 2, distance %v", d)
	}
}

func TestSlideJoint_Limits(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	world.SetAllowSleeping(false)
	anchor := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{0, 10}))
	bob := newBob(world, Vector{0, 9.5})
	world.CreateJoint(NewSlideJoint(anchor, bob, Vector{}, Vector{}, 0.5, 2))

	stepN(world, 120)

	if d := bob.Position().Distance(Vector{0, 10}); d > 2.05 || d < 1.9 {
		t.Errorf("the chain should hang at its full length, distance %v", d)
	}

	// pushed toward the anchor the chain goes slack until the minimum
	world.SetGravity(Vector{0, 10})
	stepN(world, 120)
	if d := bob.Position().Distance(Vector{0, 10}); d < 0.45 || d > 0.6 {
		t.Errorf("the chain should hold the bob at its minimum, distance %v", d)
	}
}

func TestPivotJoint_HoldsAnchor(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	hinge := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	bar, _ := addBody(world, BODY_DYNAMIC, Vector{1, 0}, NewBox(1, 0.1), 1)
	world.CreateJoint(NewPivotJoint(hinge, bar, Vector{}))

	lowest := 0.0
	for i := 0; i < 120; i++ {
		world.Step(timeStepHz, 8, 3)
		if p := bar.LocalToWorld(Vector{-1, 0}); !p.Near(Vector{}, 0.02) {
			t.Fatalf("pivot drifted to %v on step %d", p, i)
		}
		lowest = math.Min(lowest, bar.Angle())
	}
	if lowest > -1 {
		t.Errorf("the bar should swing down, lowest angle %v", lowest)
	}
}

func TestPivotJoint_MaxForce(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	hinge := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	bob := newBob(world, Vector{})
	joint := world.CreateJoint(NewPivotJoint(hinge, bob, Vector{}))
	joint.SetMaxForce(0.1 * bob.Mass() * 10)

	stepN(world, 60)

	if bob.Position().Y > -1 {
		t.Errorf("a weak pivot can't hold the bob, at %v", bob.Position())
	}
}

func TestPivotJoint_WithoutWarmStarting(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	world.SetWarmStarting(false)
	hinge := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	bar, _ := addBody(world, BODY_DYNAMIC, Vector{1, 0}, NewBox(1, 0.1), 1)
	joint := world.CreateJoint(NewPivotJoint(hinge, bar, Vector{}))

	for i := 0; i < 60; i++ {
		world.Step(timeStepHz, 8, 3)
		if p := bar.LocalToWorld(Vector{-1, 0}); !p.Near(Vector{}, 0.02) {
			t.Fatalf("pivot drifted to %v on step %d", p, i)
		}
	}
	if joint.Impulse() <= 0 {
		t.Error("the pivot carries the bar")
	}
}

func TestPivotJoint_VariableTimeStep(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	hinge := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	bar, _ := addBody(world, BODY_DYNAMIC, Vector{1, 0}, NewBox(1, 0.1), 1)
	world.CreateJoint(NewPivotJoint(hinge, bar, Vector{}))

	for i := 0; i < 120; i++ {
		dt := timeStepHz
		if i%2 == 1 {
			dt = 2 * timeStepHz
		}
		world.Step(dt, 8, 3)
		if p := bar.LocalToWorld(Vector{-1, 0}); !p.Near(Vector{}, 0.03) {
			t.Fatalf("pivot drifted to %v on step %d", p, i)
		}
	}
}

func TestDampedSpring_SettlesAtRestLength(t *testing.T) {
	world := NewWorld(Vector{})
	anchor := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{}))
	bob, _ := addBody(world, BODY_DYNAMIC, Vector{4, 0}, NewCircle(0.5, Vector{}), 1)
	world.CreateJoint(NewDampedSpring(anchor, bob, Vector{}, Vector{}, 2, 100, 5))

	shortest := 4.0
	for i := 0; i < 600; i++ {
		world.Step(timeStepHz, 8, 3)
		shortest = math.Min(shortest, bob.Position().Length())
	}

	if shortest >= 2 {
		t.Errorf("the spring should overshoot its rest length, shortest %v", shortest)
	}
	if d := bob.Position().Length(); math.Abs(d-2) > 0.05 {
		t.Errorf("spring settled at %v", d)
	}
}

func TestConstraint_Callbacks(t *testing.T) {
	world := NewWorld(Vector{0, -10})
	pivot := world.CreateBody(NewBodyDef(BODY_STATIC, Vector{0, 10}))
	bob := newBob(world, Vector{1, 10})
	joint := world.CreateJoint(NewPinJoint(pivot, bob, Vector{}, Vector{}))

	pre, post := 0, 0
	joint.PreSolve = func(c *Constraint, w *World) {
		if c != joint || w != world {
			t.Error("callback got the wrong joint or world")
		}
		pre++
	}
	joint.PostSolve = func(c *Constraint, w *World) {
		post++
	}

	stepN(world, 5)

	if pre != 5 || post != 5 {
		t.Errorf("PreSolve %d, PostSolve %d", pre, post)
	}
	if joint.Other(bob) != pivot || joint.Other(pivot) != bob {
		t.Error("Other should return the opposite body")
	}
}

func TestConstraint_SameBodyPanics(t *testing.T) {
	world := NewWorld(Vector{})
	body := world.CreateBody(NewBodyDef(BODY_DYNAMIC, Vector{}))

	defer func() {
		if recover() == nil {
			t.Error("a joint needs two bodies")
		}
	}()
	NewPivotJoint(body, body, Vector{})
}
