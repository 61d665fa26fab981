package physics

import "sort"

type proxyPair struct {
	a, b int
}

// SpatialIndex is the broad-phase. It wraps the dynamic tree, remembers which proxies moved
// since the last update and reports each new overlapping pair once.
type SpatialIndex struct {
	tree *BBTree

	proxyCount int

	moveBuffer []int
	pairBuffer []proxyPair

	queryProxyId int
	queryFunc    TreeQueryFunc
}

func NewSpatialIndex(extension, multiplier float64) *SpatialIndex {
	index := &SpatialIndex{
		tree:         NewBBTree(extension, multiplier),
		queryProxyId: nullNode,
	}
	index.queryFunc = index.queryCallback
	return index
}

func (index *SpatialIndex) CreateProxy(bb BB, obj interface{}) int {
	id := index.tree.CreateProxy(bb, obj)
	index.proxyCount++
	index.bufferMove(id)
	return id
}

func (index *SpatialIndex) DestroyProxy(id int) {
	index.unbufferMove(id)
	index.proxyCount--
	index.tree.DestroyProxy(id)
}

func (index *SpatialIndex) MoveProxy(id int, bb BB, displacement Vector) {
	if index.tree.MoveProxy(id, bb, displacement) {
		index.bufferMove(id)
	}
}

// TouchProxy makes the proxy take part in the next pair update even though it did not move.
func (index *SpatialIndex) TouchProxy(id int) {
	index.bufferMove(id)
}

func (index *SpatialIndex) GetFatBB(id int) BB {
	return index.tree.GetFatBB(id)
}

func (index *SpatialIndex) GetUserData(id int) interface{} {
	return index.tree.GetUserData(id)
}

func (index *SpatialIndex) TestOverlap(a, b int) bool {
	return index.tree.GetFatBB(a).Intersects(index.tree.GetFatBB(b))
}

func (index *SpatialIndex) ProxyCount() int {
	return index.proxyCount
}

func (index *SpatialIndex) TreeHeight() int {
	return index.tree.Height()
}

func (index *SpatialIndex) Tree() *BBTree {
	return index.tree
}

func (index *SpatialIndex) bufferMove(id int) {
	index.moveBuffer = append(index.moveBuffer, id)
}

func (index *SpatialIndex) unbufferMove(id int) {
	for i, moved := range index.moveBuffer {
		if moved == id {
			index.moveBuffer[i] = nullNode
		}
	}
}

func (index *SpatialIndex) queryCallback(id int) bool {
	// a proxy cannot form a pair with itself
	if id == index.queryProxyId {
		return true
	}

	pair := proxyPair{min(id, index.queryProxyId), max(id, index.queryProxyId)}
	index.pairBuffer = append(index.pairBuffer, pair)
	return true
}

// UpdatePairs queries the tree with every moved proxy and calls f once per overlapping pair,
// passing the proxies' user data.
func (index *SpatialIndex) UpdatePairs(f func(a, b interface{})) {
	index.pairBuffer = index.pairBuffer[:0]

	for _, id := range index.moveBuffer {
		if id == nullNode {
			continue
		}
		index.queryProxyId = id

		// pairs are found against the fat box of the moved proxy
		index.tree.Query(index.tree.GetFatBB(id), index.queryFunc)
	}
	index.queryProxyId = nullNode
	index.moveBuffer = index.moveBuffer[:0]

	pairs := index.pairBuffer
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a == pairs[j].a {
			return pairs[i].b < pairs[j].b
		}
		return pairs[i].a < pairs[j].a
	})

	// the buffer may hold duplicates when both proxies of a pair moved
	for i := 0; i < len(pairs); {
		primary := pairs[i]
		f(index.tree.GetUserData(primary.a), index.tree.GetUserData(primary.b))
		i++

		for i < len(pairs) && pairs[i] == primary {
			i++
		}
	}
}

func (index *SpatialIndex) Query(bb BB, f TreeQueryFunc) {
	index.tree.Query(bb, f)
}

func (index *SpatialIndex) RayCast(input RayCastInput, f TreeRayCastFunc) {
	index.tree.RayCast(input, f)
}
