package physics

type fixturePair struct {
	a, b *Fixture
}

// ContactManager owns the contacts of a world: it creates them from broad-phase pairs, keeps
// them up to date every step and destroys them when their fat boxes stop overlapping.
type ContactManager struct {
	si *SpatialIndex

	contacts slotMap[*Contact]
	pairs    *HashSet[fixturePair, *Contact]

	filter   ContactFilter
	listener ContactListener

	addPairFunc func(a, b interface{})
}

func newContactManager(settings *Settings) *ContactManager {
	cm := &ContactManager{
		si: NewSpatialIndex(settings.AABBExtension, settings.AABBMultiplier),
		pairs: NewHashSet(func(pair fixturePair, contact *Contact) bool {
			return (pair.a == contact.fixtureA && pair.b == contact.fixtureB) ||
				(pair.a == contact.fixtureB && pair.b == contact.fixtureA)
		}),
		filter: DefaultContactFilter{},
	}
	cm.addPairFunc = cm.AddPair
	return cm
}

func (cm *ContactManager) Count() int {
	return cm.contacts.len()
}

func (cm *ContactManager) each(f func(contact *Contact)) {
	cm.contacts.each(func(_ slotID, contact *Contact) bool {
		f(contact)
		return true
	})
}

// AddPair is the broad-phase callback. It creates a contact unless the pair is already known
// or filtered out.
func (cm *ContactManager) AddPair(proxyUserDataA, proxyUserDataB interface{}) {
	fixtureA := proxyUserDataA.(*Fixture)
	fixtureB := proxyUserDataB.(*Fixture)

	bodyA := fixtureA.body
	bodyB := fixtureB.body

	// are the fixtures on the same body?
	if bodyA == bodyB {
		return
	}

	// does a contact already exist?
	pair := fixturePair{fixtureA, fixtureB}
	hash := HashPair(fixtureA.hashid, fixtureB.hashid)
	if _, ok := cm.pairs.Find(hash, pair); ok {
		return
	}

	// does a joint or the body types prevent collision?
	if !bodyB.ShouldCollide(bodyA) {
		return
	}

	if cm.filter != nil && !cm.filter.ShouldCollide(fixtureA, fixtureB) {
		return
	}

	contact := cm.pairs.Insert(hash, pair, func(pair fixturePair) *Contact {
		return newContact(pair.a, pair.b)
	})
	contact.id = cm.contacts.insert(contact)

	// connect to the bodies
	bodyA.addContactEdge(bodyB, contact)
	bodyB.addContactEdge(bodyA, contact)
}

func (cm *ContactManager) FindNewContacts() {
	cm.si.UpdatePairs(cm.addPairFunc)
}

// Destroy removes the contact from the world and from both bodies. A touching contact ends.
func (cm *ContactManager) Destroy(c *Contact) {
	fixtureA := c.fixtureA
	fixtureB := c.fixtureB
	bodyA := fixtureA.body
	bodyB := fixtureB.body

	if c.touching && cm.listener != nil {
		cm.listener.EndContact(c)
	}

	_, ok := cm.pairs.Remove(HashPair(fixtureA.hashid, fixtureB.hashid), fixturePair{fixtureA, fixtureB})
	assert(ok, "Contact missing from the pair set")

	bodyA.removeContactEdge(c)
	bodyB.removeContactEdge(c)

	cm.contacts.remove(c.id)
	c.id = slotID{}
	c.touching = false
}

// Collide is the narrow-phase pass over all contacts.
func (cm *ContactManager) Collide() {
	cm.contacts.each(func(_ slotID, c *Contact) bool {
		fixtureA := c.fixtureA
		fixtureB := c.fixtureB
		bodyA := fixtureA.body
		bodyB := fixtureB.body

		// is this contact flagged for filtering?
		if c.filter {
			if !bodyB.ShouldCollide(bodyA) {
				cm.Destroy(c)
				return true
			}

			if cm.filter != nil && !cm.filter.ShouldCollide(fixtureA, fixtureB) {
				cm.Destroy(c)
				return true
			}

			c.filter = false
		}

		activeA := bodyA.awake && bodyA.bodyType != BODY_STATIC
		activeB := bodyB.awake && bodyB.bodyType != BODY_STATIC

		// at least one body must be awake and moving
		if !activeA && !activeB {
			return true
		}

		// the fat boxes stopped overlapping
		if !cm.si.TestOverlap(fixtureA.proxyId, fixtureB.proxyId) {
			cm.Destroy(c)
			return true
		}

		c.update(cm.listener)
		return true
	})
}
