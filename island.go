package physics

import "math"

// timeStep carries the parameters of one Step into the solvers.
type timeStep struct {
	dt     float64
	inv_dt float64
	// dt * inv_dt0, scales the warm start impulses when the step size changes
	dtRatio float64

	velocityIterations int
	positionIterations int
	warmStarting       bool
}

// Island is a set of bodies connected by touching contacts and joints. Islands are solved
// independently and go to sleep as a unit.
type Island struct {
	world    *World
	settings *Settings
	listener ContactListener

	bodies      []*Body
	contacts    []*Contact
	constraints []*Constraint

	solver  ContactSolver
	impulse ContactImpulse
}

func (island *Island) Clear() {
	island.bodies = island.bodies[:0]
	island.contacts = island.contacts[:0]
	island.constraints = island.constraints[:0]
}

func (island *Island) AddBody(body *Body) {
	island.bodies = append(island.bodies, body)
}

func (island *Island) AddContact(contact *Contact) {
	island.contacts = append(island.contacts, contact)
}

func (island *Island) AddConstraint(constraint *Constraint) {
	island.constraints = append(island.constraints, constraint)
}

func (island *Island) Solve(step *timeStep, gravity Vector, allowSleep bool) {
	settings := island.settings
	h := step.dt

	// integrate velocities and apply damping
	for _, b := range island.bodies {
		if b.bodyType != BODY_DYNAMIC {
			continue
		}

		b.v = b.v.Add(gravity.Add(b.f.Mult(b.m_inv)).Mult(h))
		b.w += h * b.i_inv * b.t

		// Pade approximation of exp(-damping*dt), it never reverses the velocity
		b.v = b.v.Mult(1.0 / (1.0 + h*b.linearDamping))
		b.w *= 1.0 / (1.0 + h*b.angularDamping)
	}

	solver := &island.solver
	solver.Initialize(step, island.contacts, settings)
	solver.WarmStart()

	for _, constraint := range island.constraints {
		if constraint.PreSolve != nil {
			constraint.PreSolve(constraint, island.world)
		}
		constraint.Class.initVelocity(step)
	}

	for i := 0; i < step.velocityIterations; i++ {
		for _, constraint := range island.constraints {
			constraint.Class.solveVelocity(step)
		}
		solver.SolveVelocityConstraints()
	}

	solver.StoreImpulses()

	for _, constraint := range island.constraints {
		if constraint.PostSolve != nil {
			constraint.PostSolve(constraint, island.world)
		}
	}

	// integrate positions
	maxTranslationSquared := settings.MaxTranslation * settings.MaxTranslation
	maxRotationSquared := settings.MaxRotation * settings.MaxRotation
	for _, b := range island.bodies {
		if b.bodyType == BODY_STATIC {
			continue
		}

		// check for large velocities
		translation := b.v.Mult(h)
		if translation.Dot(translation) > maxTranslationSquared {
			b.v = b.v.Mult(settings.MaxTranslation / translation.Length())
		}

		rotation := h * b.w
		if rotation*rotation > maxRotationSquared {
			b.w *= settings.MaxRotation / math.Abs(rotation)
		}

		// store positions for continuous collision
		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A

		b.sweep.C = b.sweep.C.Add(b.v.Mult(h))
		b.sweep.A += h * b.w

		b.synchronizeTransform()
	}

	// iterate over constraints
	for i := 0; i < step.positionIterations; i++ {
		if solver.SolvePositionConstraints(settings.Baumgarte) {
			// exit early if the position errors are small
			break
		}
	}

	island.Report(solver.constraints)

	if allowSleep {
		minSleepTime := INFINITY

		linTolSqr := settings.LinearSleepTolerance * settings.LinearSleepTolerance
		angTolSqr := settings.AngularSleepTolerance * settings.AngularSleepTolerance

		for _, b := range island.bodies {
			if b.bodyType == BODY_STATIC {
				continue
			}

			if !b.allowSleep || b.w*b.w > angTolSqr || b.v.Dot(b.v) > linTolSqr {
				b.sleepTime = 0
				minSleepTime = 0
			} else {
				b.sleepTime += h
				minSleepTime = math.Min(minSleepTime, b.sleepTime)
			}
		}

		if minSleepTime >= settings.TimeToSleep {
			for _, b := range island.bodies {
				b.SetAwake(false)
			}
		}
	}
}

// Report hands the solved impulses to the contact listener.
func (island *Island) Report(constraints []ContactConstraint) {
	if island.listener == nil {
		return
	}

	for i, contact := range island.contacts {
		cc := &constraints[i]
		impulse := &island.impulse
		impulse.Count = cc.pointCount
		for j := 0; j < cc.pointCount; j++ {
			impulse.NormalImpulses[j] = cc.points[j].normalImpulse
			impulse.TangentImpulses[j] = cc.points[j].tangentImpulse
		}
		island.listener.PostSolve(contact, impulse)
	}
}
