package physics

type HashValue uintptr

const HASH_COEF = HashValue(3344921057)

// HashPair is symmetric, so the pair (a, b) hashes the same as (b, a).
func HashPair(a, b HashValue) HashValue {
	return a*HASH_COEF ^ b*HASH_COEF
}

type HashSetEqual[K, T any] func(key K, elt T) bool
type HashSetTrans[K, T any] func(key K) T

type HashSetBin[T any] struct {
	elt  T
	hash HashValue
	next *HashSetBin[T]
}

// HashSet is a chained hash set. Elements are found by hash and then by the equality function,
// so several elements may share a hash.
type HashSet[K, T any] struct {
	entries uint
	eql     HashSetEqual[K, T]

	table      map[HashValue]*HashSetBin[T]
	pooledBins *HashSetBin[T]
}

func NewHashSet[K, T any](eql HashSetEqual[K, T]) *HashSet[K, T] {
	return &HashSet[K, T]{
		eql:   eql,
		table: map[HashValue]*HashSetBin[T]{},
	}
}

func (set *HashSet[K, T]) Count() uint {
	return set.entries
}

func (set *HashSet[K, T]) getUnusedBin() *HashSetBin[T] {
	bin := set.pooledBins
	if bin != nil {
		set.pooledBins = bin.next
		return bin
	}
	return &HashSetBin[T]{}
}

func (set *HashSet[K, T]) recycleBin(bin *HashSetBin[T]) {
	var zero T
	bin.elt = zero
	bin.next = set.pooledBins
	set.pooledBins = bin
}

// Insert returns the element matching key, creating it with trans when there is none.
func (set *HashSet[K, T]) Insert(hash HashValue, key K, trans HashSetTrans[K, T]) T {
	// Find the bin with the matching element.
	bin := set.table[hash]
	for bin != nil && !set.eql(key, bin.elt) {
		bin = bin.next
	}

	// Create it if necessary.
	if bin == nil {
		bin = set.getUnusedBin()
		bin.hash = hash
		bin.elt = trans(key)

		bin.next = set.table[hash]
		set.table[hash] = bin

		set.entries++
	}

	return bin.elt
}

func (set *HashSet[K, T]) Remove(hash HashValue, key K) (T, bool) {
	var prev *HashSetBin[T]
	bin := set.table[hash]

	// Find the bin
	for bin != nil && !set.eql(key, bin.elt) {
		prev = bin
		bin = bin.next
	}

	// Remove the bin if it exists
	if bin == nil {
		var zero T
		return zero, false
	}

	if prev == nil {
		if bin.next == nil {
			delete(set.table, hash)
		} else {
			set.table[hash] = bin.next
		}
	} else {
		prev.next = bin.next
	}
	set.entries--

	elt := bin.elt
	set.recycleBin(bin)
	return elt, true
}

func (set *HashSet[K, T]) Find(hash HashValue, key K) (T, bool) {
	bin := set.table[hash]
	for bin != nil && !set.eql(key, bin.elt) {
		bin = bin.next
	}

	if bin != nil {
		return bin.elt, true
	}
	var zero T
	return zero, false
}

func (set *HashSet[K, T]) Each(f func(elt T)) {
	for _, bin := range set.table {
		for bin != nil {
			next := bin.next
			f(bin.elt)
			bin = next
		}
	}
}
