package physics

import "log"

// World owns the bodies, joints and contacts of a simulation and advances them with Step.
type World struct {
	settings Settings

	gravity Vector

	bodies slotMap[*Body]
	joints slotMap[*Constraint]

	contactManager *ContactManager

	destructionListener DestructionListener

	// Logger receives diagnostics the solvers recover from, such as a TOI solver that did not
	// converge. Nil is silent.
	Logger *log.Logger

	allowSleep        bool
	warmStarting      bool
	continuousPhysics bool
	autoClearForces   bool

	// a fixture was added, look for its contacts at the start of the next step
	newFixture bool
	locked     bool

	fixtureSeq HashValue

	// dt of the previous step, used to scale warm starting
	inv_dt0 float64

	// scratch
	island      Island
	stack       []*Body
	toiSolver   TOISolver
	toiContacts []*Contact
	toiFailures int
}

func NewWorld(gravity Vector) *World {
	return NewWorldWithSettings(gravity, DefaultSettings())
}

// NewWorldWithSettings creates a world with its own copy of settings.
func NewWorldWithSettings(gravity Vector, settings Settings) *World {
	if err := settings.Validate(); err != nil {
		panic(err)
	}

	world := &World{
		settings:          settings,
		gravity:           gravity,
		allowSleep:        true,
		warmStarting:      true,
		continuousPhysics: true,
		autoClearForces:   true,
	}
	world.contactManager = newContactManager(&world.settings)
	world.island.world = world
	world.island.settings = &world.settings
	return world
}

func (world *World) Settings() Settings {
	return world.settings
}

func (world *World) Gravity() Vector {
	return world.gravity
}

func (world *World) SetGravity(gravity Vector) {
	world.gravity = gravity
}

// SetAllowSleeping turns sleeping on or off. Turning it off wakes every body.
func (world *World) SetAllowSleeping(flag bool) {
	if flag == world.allowSleep {
		return
	}
	world.allowSleep = flag
	if !flag {
		world.EachBody(func(b *Body) {
			b.SetAwake(true)
		})
	}
}

func (world *World) AllowSleeping() bool {
	return world.allowSleep
}

func (world *World) SetWarmStarting(flag bool) {
	world.warmStarting = flag
}

func (world *World) SetContinuousPhysics(flag bool) {
	world.continuousPhysics = flag
}

// SetAutoClearForces controls whether forces are zeroed after every Step. Turn it off when
// stepping several sub steps with the same forces, and call ClearForces after the last.
func (world *World) SetAutoClearForces(flag bool) {
	world.autoClearForces = flag
}

func (world *World) SetContactListener(listener ContactListener) {
	world.contactManager.listener = listener
}

func (world *World) SetDestructionListener(listener DestructionListener) {
	world.destructionListener = listener
}

// SetContactFilter replaces the filter. Nil lets every pair with a dynamic body collide.
func (world *World) SetContactFilter(filter ContactFilter) {
	world.contactManager.filter = filter
}

func (world *World) IsLocked() bool {
	return world.locked
}

func (world *World) assertUnlocked() {
	assert(!world.locked, "This operation cannot be called during a step")
}

func (world *World) BodyCount() int {
	return world.bodies.len()
}

func (world *World) JointCount() int {
	return world.joints.len()
}

func (world *World) ContactCount() int {
	return world.contactManager.Count()
}

func (world *World) ProxyCount() int {
	return world.contactManager.si.ProxyCount()
}

func (world *World) TreeHeight() int {
	return world.contactManager.si.TreeHeight()
}

// Body resolves an id. It returns nil for ids of destroyed bodies.
func (world *World) Body(id BodyID) *Body {
	body, _ := world.bodies.get(slotID(id))
	return body
}

func (world *World) Joint(id JointID) *Constraint {
	joint, _ := world.joints.get(slotID(id))
	return joint
}

// EachBody visits bodies in creation order, reusing the slots of destroyed bodies.
func (world *World) EachBody(f func(*Body)) {
	world.bodies.each(func(_ slotID, b *Body) bool {
		f(b)
		return true
	})
}

func (world *World) EachJoint(f func(*Constraint)) {
	world.joints.each(func(_ slotID, c *Constraint) bool {
		f(c)
		return true
	})
}

func (world *World) EachContact(f func(*Contact)) {
	world.contactManager.each(f)
}

func (world *World) CreateBody(def *BodyDef) *Body {
	world.assertUnlocked()

	body := newBody(def, world)
	body.id = BodyID(world.bodies.insert(body))
	return body
}

// DestroyBody destroys the body with its joints, contacts and fixtures. The destruction
// listener is told about the joints and fixtures.
func (world *World) DestroyBody(body *Body) {
	world.assertUnlocked()
	assert(body.world == world, "Body is not in this world")

	for len(body.constraints) > 0 {
		constraint := body.constraints[0]
		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeJoint(constraint)
		}
		world.DestroyJoint(constraint)
	}

	for len(body.contactEdges) > 0 {
		world.contactManager.Destroy(body.contactEdges[0].Contact)
	}

	for _, fixture := range body.fixtures {
		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeFixture(fixture)
		}
		fixture.destroyProxy(world.contactManager.si)
		fixture.body = nil
	}
	body.fixtures = nil

	world.bodies.remove(slotID(body.id))
	body.world = nil
}

// CreateJoint adds a joint made by one of the joint constructors to the world.
func (world *World) CreateJoint(constraint *Constraint) *Constraint {
	world.assertUnlocked()
	assert(constraint.world == nil, "Joint is already in a world")
	a := constraint.a
	b := constraint.b
	assert(a.world == world && b.world == world, "Joint bodies are not in this world")

	constraint.world = world
	constraint.id = JointID(world.joints.insert(constraint))

	a.constraints = append(a.constraints, constraint)
	b.constraints = append(b.constraints, constraint)

	// contacts between the bodies may have to go
	if !constraint.collideBodies {
		constraint.flagContacts()
	}
	return constraint
}

func (world *World) DestroyJoint(constraint *Constraint) {
	world.assertUnlocked()
	assert(constraint.world == world, "Joint is not in this world")

	a := constraint.a
	b := constraint.b
	a.SetAwake(true)
	b.SetAwake(true)

	a.removeConstraint(constraint)
	b.removeConstraint(constraint)

	world.joints.remove(slotID(constraint.id))
	constraint.world = nil
	constraint.id = JointID{}

	// pairs filtered out by the joint have no contact, touch the proxies so they are found again
	if !constraint.collideBodies {
		b.touchProxies()
	}
}

// Step advances the world by dt, solving contacts and joints with the given iteration counts.
func (world *World) Step(dt float64, velocityIterations, positionIterations int) {
	// new fixtures need contacts before collide
	if world.newFixture {
		world.contactManager.FindNewContacts()
		world.newFixture = false
	}

	world.locked = true
	defer func() {
		world.locked = false
	}()

	step := timeStep{
		dt:                 dt,
		velocityIterations: velocityIterations,
		positionIterations: positionIterations,
		warmStarting:       world.warmStarting,
	}
	if dt > 0 {
		step.inv_dt = 1.0 / dt
	}
	step.dtRatio = world.inv_dt0 * dt

	// update contacts, this is where some contacts are destroyed
	world.contactManager.Collide()

	// integrate velocities, solve velocity constraints, and integrate positions
	if step.dt > 0 {
		world.solve(&step)
	}

	// handle TOI events
	if world.continuousPhysics && step.dt > 0 {
		world.solveTOI()
	}

	if step.dt > 0 {
		world.inv_dt0 = step.inv_dt
	}

	if world.autoClearForces {
		world.ClearForces()
	}
}

func (world *World) ClearForces() {
	world.EachBody(func(b *Body) {
		b.f = Vector{}
		b.t = 0
	})
}

// eachIsland builds the islands of awake bodies and hands each one to f. The island is
// reused, f must not keep it.
func (world *World) eachIsland(f func(island *Island)) {
	island := &world.island
	island.listener = world.contactManager.listener

	// clear all the island flags
	world.EachBody(func(b *Body) {
		b.island = false
	})
	world.contactManager.each(func(c *Contact) {
		c.island = false
	})
	world.EachJoint(func(c *Constraint) {
		c.island = false
	})

	stack := world.stack[:0]
	world.bodies.each(func(_ slotID, seed *Body) bool {
		if seed.island || !seed.awake || !seed.active {
			return true
		}

		// the seed must be dynamic or kinematic
		if seed.bodyType == BODY_STATIC {
			return true
		}

		// depth first search over the constraint graph
		island.Clear()
		stack = append(stack[:0], seed)
		seed.island = true

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			assert(b.active, "Inactive body in island")
			island.AddBody(b)

			// make sure the body is awake
			b.SetAwake(true)

			// static bodies don't propagate islands, they may be in several
			if b.bodyType == BODY_STATIC {
				continue
			}

			for _, edge := range b.contactEdges {
				contact := edge.Contact

				if contact.island {
					continue
				}

				// is this contact solid and touching?
				if !contact.enabled || !contact.touching {
					continue
				}

				// skip sensors
				if contact.fixtureA.sensor || contact.fixtureB.sensor {
					continue
				}

				island.AddContact(contact)
				contact.island = true

				other := edge.Other
				if other.island {
					continue
				}

				stack = append(stack, other)
				other.island = true
			}

			for _, constraint := range b.constraints {
				if constraint.island {
					continue
				}

				other := constraint.Other(b)

				// don't simulate joints connected to inactive bodies
				if !other.active {
					continue
				}

				island.AddConstraint(constraint)
				constraint.island = true

				if other.island {
					continue
				}

				stack = append(stack, other)
				other.island = true
			}
		}

		f(island)

		// allow static bodies to participate in other islands
		for _, b := range island.bodies {
			if b.bodyType == BODY_STATIC {
				b.island = false
			}
		}
		return true
	})
	world.stack = stack[:0]
}

func (world *World) solve(step *timeStep) {
	world.eachIsland(func(island *Island) {
		island.Solve(step, world.gravity, world.allowSleep)
	})

	// synchronize fixtures, check for out of range bodies
	world.EachBody(func(b *Body) {
		if !b.awake || !b.active || b.bodyType == BODY_STATIC {
			return
		}

		// update fixtures for broad-phase
		b.synchronizeFixtures()
	})

	// look for new contacts
	world.contactManager.FindNewContacts()
}

// solveTOI sweeps bodies that may have tunneled this step back to their first time of impact.
func (world *World) solveTOI() {
	// prepare all contacts
	world.contactManager.each(func(c *Contact) {
		c.enabled = true
		c.toiCount = 0
	})

	// bodies that were not solved this step have nothing to sweep
	world.EachBody(func(b *Body) {
		b.toi = !b.island || b.bodyType == BODY_KINEMATIC || b.bodyType == BODY_STATIC
	})

	world.toiFailures = 0

	// non-bullets only sweep against static and kinematic bodies
	world.EachBody(func(b *Body) {
		if b.toi || b.bullet {
			return
		}
		if world.settings.ContinuousNonBullets {
			world.solveTOIBody(b)
		}
		b.toi = true
	})

	// bullets sweep against everything already resolved
	world.EachBody(func(b *Body) {
		if b.toi || !b.bullet {
			return
		}
		world.solveTOIBody(b)
		b.toi = true
	})

	if world.toiFailures > 0 && world.Logger != nil {
		world.Logger.Printf("physics: TOI solver did not converge for %d bodies", world.toiFailures)
	}
}

func (world *World) solveTOIBody(body *Body) {
	settings := &world.settings
	listener := world.contactManager.listener

	// find the minimum contact
	var toiContact *Contact
	var toiOther *Body
	toi := 1.0
	bullet := body.bullet

	// iterate until all contacts agree on the minimum TOI, the TOI may skip intermediate
	// collisions when objects rotate through each other
	var found bool
	var count int
	iter := 0
	for {
		count = 0
		found = false
		for _, edge := range body.contactEdges {
			contact := edge.Contact
			if contact == toiContact {
				continue
			}

			other := edge.Other
			if bullet {
				// bullets only sweep against bodies whose TOI is resolved
				if !other.toi {
					continue
				}

				// don't resolve the same hit twice
				if other.bodyType != BODY_STATIC && contact.bulletHit {
					continue
				}
			} else if other.bodyType == BODY_DYNAMIC {
				continue
			}

			if !contact.enabled {
				continue
			}

			// prevent infinite looping
			if contact.toiCount > settings.MaxTOIHits {
				continue
			}

			fixtureA := contact.fixtureA
			fixtureB := contact.fixtureB

			// cull sensors
			if fixtureA.sensor || fixtureB.sensor {
				continue
			}

			// compute the time of impact in [0, toi]
			input := TOIInput{
				ProxyA: fixtureA.shape.distanceProxy(),
				ProxyB: fixtureB.shape.distanceProxy(),
				SweepA: fixtureA.body.sweep,
				SweepB: fixtureB.body.sweep,
				TMax:   toi,
			}

			var output TOIOutput
			TimeOfImpact(&output, &input)

			if output.State == TOI_STATE_TOUCHING && output.T < toi {
				toiContact = contact
				toi = output.T
				toiOther = other
				found = true
			}

			count++
		}

		iter++
		if !(found && count > 1 && iter < settings.MaxTOIIterations) {
			break
		}
	}

	if toiContact == nil {
		body.advance(1.0)
		return
	}

	backup := body.sweep
	body.advance(toi)
	toiContact.update(listener)
	if !toiContact.enabled {
		// the listener disabled the contact, try again without it
		body.sweep = backup
		body.synchronizeTransform()
		world.solveTOIBody(body)
		return
	}

	toiContact.toiCount++

	// update the contacts against static and kinematic bodies and collect the touching ones,
	// correcting against dynamic bodies could push the body out of the world
	contacts := world.toiContacts[:0]
	for _, edge := range body.contactEdges {
		if len(contacts) >= settings.MaxTOIContacts {
			break
		}

		if edge.Other.bodyType == BODY_DYNAMIC {
			continue
		}

		contact := edge.Contact
		if !contact.enabled {
			continue
		}

		if contact.fixtureA.sensor || contact.fixtureB.sensor {
			continue
		}

		// the contact likely has new points, the listener may disable it
		if contact != toiContact {
			contact.update(listener)
		}

		if !contact.enabled || !contact.touching {
			continue
		}

		contacts = append(contacts, contact)
	}
	world.toiContacts = contacts[:0]

	// reduce the TOI body's overlap with the contacts
	solver := &world.toiSolver
	solver.Initialize(contacts, body, settings)

	solved := false
	for i := 0; i < settings.TOISolverIterations; i++ {
		if solver.Solve(settings.TOIBaumgarte) {
			solved = true
			break
		}
	}
	if !solved {
		world.toiFailures++
	}

	if toiOther.bodyType != BODY_STATIC {
		toiContact.bulletHit = true
	}

	// the pose the solver left is the start of the next sweep
	body.sweep.C0 = body.sweep.C
	body.sweep.A0 = body.sweep.A
	body.synchronizeFixtures()
}

// QueryAABB calls back for every fixture whose fat box overlaps bb.
func (world *World) QueryAABB(callback QueryCallback, bb BB) {
	si := world.contactManager.si
	si.Query(bb, func(id int) bool {
		return callback(si.GetUserData(id).(*Fixture))
	})
}

// RayCast calls back for every fixture the segment p1->p2 hits. The callback's return value
// filters, clips or ends the cast, see RayCastCallback.
func (world *World) RayCast(callback RayCastCallback, p1, p2 Vector) {
	si := world.contactManager.si
	input := RayCastInput{P1: p1, P2: p2, MaxFraction: 1}
	si.RayCast(input, func(input RayCastInput, id int) float64 {
		fixture := si.GetUserData(id).(*Fixture)
		output, hit := fixture.RayCast(input)
		if !hit {
			return input.MaxFraction
		}

		fraction := output.Fraction
		point := p1.Mult(1.0 - fraction).Add(p2.Mult(fraction))
		return callback(fixture, point, output.Normal, fraction)
	})
}
