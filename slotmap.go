package physics

// slotID is a generation checked index. A stale id, one whose slot has been freed and reused,
// never resolves.
type slotID struct {
	index      uint32
	generation uint32
}

type slot[T any] struct {
	value      T
	generation uint32
	used       bool
}

// slotMap stores values in a dense array with a free list. Iteration is in slot order, which
// makes it deterministic for a given history of inserts and removes.
type slotMap[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (m *slotMap[T]) insert(value T) slotID {
	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		index = uint32(len(m.slots))
		m.slots = append(m.slots, slot[T]{})
	}

	s := &m.slots[index]
	// generation zero is never handed out, so the zero slotID is always invalid
	s.generation++
	s.value = value
	s.used = true
	m.count++
	return slotID{index: index, generation: s.generation}
}

func (m *slotMap[T]) valid(id slotID) bool {
	return int(id.index) < len(m.slots) && m.slots[id.index].used && m.slots[id.index].generation == id.generation
}

func (m *slotMap[T]) get(id slotID) (T, bool) {
	if !m.valid(id) {
		var zero T
		return zero, false
	}
	return m.slots[id.index].value, true
}

func (m *slotMap[T]) remove(id slotID) T {
	assert(m.valid(id), "Invalid or stale handle")
	s := &m.slots[id.index]
	value := s.value

	var zero T
	s.value = zero
	s.used = false
	m.free = append(m.free, id.index)
	m.count--
	return value
}

func (m *slotMap[T]) len() int {
	return m.count
}

// each visits live values in slot order. Values removed during the walk are skipped, values
// inserted during the walk may or may not be visited.
func (m *slotMap[T]) each(f func(id slotID, value T) bool) {
	for i := range m.slots {
		s := &m.slots[i]
		if !s.used {
			continue
		}
		if !f(slotID{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}
