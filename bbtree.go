package physics

import (
	"math"
)

const nullNode = -1

// TreeQueryFunc is called for each proxy whose fat box overlaps the query box.
// Return false to stop the query.
type TreeQueryFunc func(id int) bool

// TreeRayCastFunc is called for each proxy whose fat box the ray touches. It returns the new
// max fraction of the ray: 0 terminates, the input fraction continues unclipped, and anything
// in between clips the ray.
type TreeRayCastFunc func(input RayCastInput, id int) float64

// Node is a node of the dynamic tree. Leaves hold proxies, internal nodes always have two children.
type Node struct {
	bb  BB
	obj interface{}

	// parent, or next free node when the node is in the free list
	parent int
	a, b   int

	// leaf = 0, free node = -1
	height int
}

func (node *Node) IsLeaf() bool {
	return node.a == nullNode
}

// BBTree is a dynamic bounding volume tree. Leaves are fattened so that proxies can move a
// little without the tree being updated. Nodes are kept in one array and refer to each other
// by index, so the array may be reallocated freely.
type BBTree struct {
	root int

	nodes     []Node
	nodeCount int
	freeList  int

	// number of leaf insertions since creation
	insertionCount int

	extension  float64
	multiplier float64

	stack []int
}

func NewBBTree(extension, multiplier float64) *BBTree {
	tree := &BBTree{
		root:       nullNode,
		freeList:   nullNode,
		extension:  extension,
		multiplier: multiplier,
	}
	tree.grow(16)
	return tree
}

func (tree *BBTree) grow(capacity int) {
	start := len(tree.nodes)
	for i := start; i < capacity; i++ {
		tree.nodes = append(tree.nodes, Node{parent: i + 1, a: nullNode, b: nullNode, height: -1})
	}
	tree.nodes[capacity-1].parent = tree.freeList
	tree.freeList = start
}

func (tree *BBTree) NodeFromPool() int {
	if tree.freeList == nullNode {
		assert(tree.nodeCount == len(tree.nodes), "Free list is empty but nodes are unused")
		tree.grow(2 * len(tree.nodes))
	}

	id := tree.freeList
	node := &tree.nodes[id]
	tree.freeList = node.parent
	node.parent = nullNode
	node.a = nullNode
	node.b = nullNode
	node.height = 0
	node.obj = nil
	tree.nodeCount++
	return id
}

func (tree *BBTree) NodeRecycle(id int) {
	assert(0 <= id && id < len(tree.nodes), "Node id out of range: ", id)
	assert(0 < tree.nodeCount, "Recycling a node from an empty tree")
	node := &tree.nodes[id]
	node.parent = tree.freeList
	node.height = -1
	node.obj = nil
	tree.freeList = id
	tree.nodeCount--
}

func (tree *BBTree) checkProxy(id int) {
	assert(0 <= id && id < len(tree.nodes), "Invalid proxy id: ", id)
	assert(tree.nodes[id].height == 0 && tree.nodes[id].IsLeaf(), "Proxy id is not a leaf: ", id)
}

// CreateProxy inserts a leaf for the given box and returns its id.
func (tree *BBTree) CreateProxy(bb BB, obj interface{}) int {
	id := tree.NodeFromPool()
	node := &tree.nodes[id]
	node.bb = bb.Grow(tree.extension)
	node.obj = obj
	node.height = 0

	tree.insertLeaf(id)
	return id
}

func (tree *BBTree) DestroyProxy(id int) {
	tree.checkProxy(id)
	tree.removeLeaf(id)
	tree.NodeRecycle(id)
}

// MoveProxy re-inserts the proxy when its new box escapes the fat box. The fat box is extended
// in the direction of the displacement. Returns true when the tree changed.
func (tree *BBTree) MoveProxy(id int, bb BB, displacement Vector) bool {
	tree.checkProxy(id)

	if tree.nodes[id].bb.Contains(bb) {
		return false
	}

	tree.removeLeaf(id)
	tree.nodes[id].bb = bb.Grow(tree.extension).Extend(displacement.Mult(tree.multiplier))
	tree.insertLeaf(id)
	return true
}

func (tree *BBTree) GetUserData(id int) interface{} {
	tree.checkProxy(id)
	return tree.nodes[id].obj
}

func (tree *BBTree) GetFatBB(id int) BB {
	tree.checkProxy(id)
	return tree.nodes[id].bb
}

func (tree *BBTree) Query(bb BB, f TreeQueryFunc) {
	// a callback may query again, so the shared stack is taken for the duration of the walk
	stack := append(tree.stack[:0], tree.root)
	tree.stack = nil

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}

		node := &tree.nodes[id]
		if !node.bb.Intersects(bb) {
			continue
		}
		if node.IsLeaf() {
			if !f(id) {
				break
			}
		} else {
			stack = append(stack, node.a, node.b)
		}
	}
	tree.stack = stack[:0]
}

// RayCast visits the proxies whose fat boxes the segment p1->p2 crosses, in no particular
// order. The callback controls clipping through its return value.
func (tree *BBTree) RayCast(input RayCastInput, f TreeRayCastFunc) {
	p1, p2 := input.P1, input.P2
	r := p2.Sub(p1).Normalize()
	assert(r.LengthSq() > 0, "Ray has zero length")

	// v is perpendicular to the segment
	v := CrossScalar(1, r)
	absV := v.Abs()

	maxFraction := input.MaxFraction

	segmentBB := func() BB {
		t := p1.Add(p2.Sub(p1).Mult(maxFraction))
		return BB{math.Min(p1.X, t.X), math.Min(p1.Y, t.Y), math.Max(p1.X, t.X), math.Max(p1.Y, t.Y)}
	}
	bb := segmentBB()

	stack := append(tree.stack[:0], tree.root)
	tree.stack = nil
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}

		node := &tree.nodes[id]
		if !node.bb.Intersects(bb) {
			continue
		}

		// separating axis for segment: |dot(v, p1 - c)| > dot(|v|, h)
		c := node.bb.Center()
		h := node.bb.Extents()
		if math.Abs(v.Dot(p1.Sub(c)))-absV.Dot(h) > 0 {
			continue
		}

		if node.IsLeaf() {
			sub := RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}
			value := f(sub, id)
			if value == 0 {
				break
			}
			if value > 0 {
				maxFraction = value
				bb = segmentBB()
			}
		} else {
			stack = append(stack, node.a, node.b)
		}
	}
	tree.stack = stack[:0]
}

func (tree *BBTree) insertLeaf(leaf int) {
	tree.insertionCount++

	if tree.root == nullNode {
		tree.root = leaf
		tree.nodes[leaf].parent = nullNode
		return
	}

	// find the best sibling, choosing the cheaper child by area growth
	leafBB := tree.nodes[leaf].bb
	index := tree.root
	for !tree.nodes[index].IsLeaf() {
		node := &tree.nodes[index]
		a, b := &tree.nodes[node.a], &tree.nodes[node.b]

		cost_a := b.bb.Area() + a.bb.MergedArea(leafBB)
		cost_b := a.bb.Area() + b.bb.MergedArea(leafBB)

		if cost_a == cost_b {
			cost_a = a.bb.Proximity(leafBB)
			cost_b = b.bb.Proximity(leafBB)
		}

		if cost_b < cost_a {
			index = node.b
		} else {
			index = node.a
		}
	}
	sibling := index

	oldParent := tree.nodes[sibling].parent
	newParent := tree.NodeFromPool()
	tree.nodes[newParent].parent = oldParent
	tree.nodes[newParent].bb = leafBB.Merge(tree.nodes[sibling].bb)
	tree.nodes[newParent].height = tree.nodes[sibling].height + 1
	tree.nodes[newParent].a = sibling
	tree.nodes[newParent].b = leaf
	tree.nodes[sibling].parent = newParent
	tree.nodes[leaf].parent = newParent

	if oldParent != nullNode {
		if tree.nodes[oldParent].a == sibling {
			tree.nodes[oldParent].a = newParent
		} else {
			tree.nodes[oldParent].b = newParent
		}
	} else {
		tree.root = newParent
	}

	tree.refit(tree.nodes[leaf].parent)
}

func (tree *BBTree) removeLeaf(leaf int) {
	if leaf == tree.root {
		tree.root = nullNode
		return
	}

	parent := tree.nodes[leaf].parent
	grandParent := tree.nodes[parent].parent
	sibling := tree.nodes[parent].a
	if sibling == leaf {
		sibling = tree.nodes[parent].b
	}

	if grandParent != nullNode {
		if tree.nodes[grandParent].a == parent {
			tree.nodes[grandParent].a = sibling
		} else {
			tree.nodes[grandParent].b = sibling
		}
		tree.nodes[sibling].parent = grandParent
		tree.NodeRecycle(parent)

		tree.refit(grandParent)
	} else {
		tree.root = sibling
		tree.nodes[sibling].parent = nullNode
		tree.NodeRecycle(parent)
	}
}

// refit walks from index to the root fixing boxes and heights and rebalancing.
func (tree *BBTree) refit(index int) {
	for index != nullNode {
		index = tree.balance(index)

		node := &tree.nodes[index]
		a, b := &tree.nodes[node.a], &tree.nodes[node.b]
		node.height = 1 + max(a.height, b.height)
		node.bb = a.bb.Merge(b.bb)

		index = node.parent
	}
}

// balance performs a left or right rotation if node iA is imbalanced and returns the new
// root of the subtree.
func (tree *BBTree) balance(iA int) int {
	nodes := tree.nodes
	A := &nodes[iA]
	if A.IsLeaf() || A.height < 2 {
		return iA
	}

	iB, iC := A.a, A.b
	B, C := &nodes[iB], &nodes[iC]

	balance := C.height - B.height

	// rotate C up
	if balance > 1 {
		iF, iG := C.a, C.b
		F, G := &nodes[iF], &nodes[iG]

		C.a = iA
		C.parent = A.parent
		A.parent = iC

		if C.parent != nullNode {
			if nodes[C.parent].a == iA {
				nodes[C.parent].a = iC
			} else {
				nodes[C.parent].b = iC
			}
		} else {
			tree.root = iC
		}

		if F.height > G.height {
			C.b = iF
			A.b = iG
			G.parent = iA
			A.bb = B.bb.Merge(G.bb)
			C.bb = A.bb.Merge(F.bb)
			A.height = 1 + max(B.height, G.height)
			C.height = 1 + max(A.height, F.height)
		} else {
			C.b = iG
			A.b = iF
			F.parent = iA
			A.bb = B.bb.Merge(F.bb)
			C.bb = A.bb.Merge(G.bb)
			A.height = 1 + max(B.height, F.height)
			C.height = 1 + max(A.height, G.height)
		}
		return iC
	}

	// rotate B up
	if balance < -1 {
		iD, iE := B.a, B.b
		D, E := &nodes[iD], &nodes[iE]

		B.a = iA
		B.parent = A.parent
		A.parent = iB

		if B.parent != nullNode {
			if nodes[B.parent].a == iA {
				nodes[B.parent].a = iB
			} else {
				nodes[B.parent].b = iB
			}
		} else {
			tree.root = iB
		}

		if D.height > E.height {
			B.b = iD
			A.a = iE
			E.parent = iA
			A.bb = C.bb.Merge(E.bb)
			B.bb = A.bb.Merge(D.bb)
			A.height = 1 + max(C.height, E.height)
			B.height = 1 + max(A.height, D.height)
		} else {
			B.b = iE
			A.a = iD
			D.parent = iA
			A.bb = C.bb.Merge(D.bb)
			B.bb = A.bb.Merge(E.bb)
			A.height = 1 + max(C.height, D.height)
			B.height = 1 + max(A.height, E.height)
		}
		return iB
	}

	return iA
}

func (tree *BBTree) Count() int {
	count := 0
	for i := range tree.nodes {
		if tree.nodes[i].height == 0 {
			count++
		}
	}
	return count
}

// Height is the height of the root, zero for an empty tree.
func (tree *BBTree) Height() int {
	if tree.root == nullNode {
		return 0
	}
	return tree.nodes[tree.root].height
}

// GetMaxBalance is the largest height difference between two siblings.
func (tree *BBTree) GetMaxBalance() int {
	maxBalance := 0
	for i := range tree.nodes {
		node := &tree.nodes[i]
		if node.height <= 1 {
			continue
		}
		balance := tree.nodes[node.b].height - tree.nodes[node.a].height
		if balance < 0 {
			balance = -balance
		}
		maxBalance = max(maxBalance, balance)
	}
	return maxBalance
}

// GetAreaRatio is the summed area of all nodes over the root area.
func (tree *BBTree) GetAreaRatio() float64 {
	if tree.root == nullNode {
		return 0
	}
	rootArea := tree.nodes[tree.root].bb.Area()
	if rootArea == 0 {
		return 0
	}

	total := 0.0
	for i := range tree.nodes {
		if tree.nodes[i].height < 0 {
			continue
		}
		total += tree.nodes[i].bb.Area()
	}
	return total / rootArea
}

// RebuildBottomUp builds an optimal tree by repeatedly pairing the cheapest nodes. This is
// expensive and meant for tests and offline use.
func (tree *BBTree) RebuildBottomUp() {
	leaves := make([]int, 0, tree.nodeCount)

	for i := range tree.nodes {
		node := &tree.nodes[i]
		if node.height < 0 {
			continue
		}
		if node.IsLeaf() {
			node.parent = nullNode
			leaves = append(leaves, i)
		} else {
			tree.NodeRecycle(i)
		}
	}

	count := len(leaves)
	if count == 0 {
		tree.root = nullNode
		return
	}

	for count > 1 {
		minCost := INFINITY
		iMin, jMin := -1, -1
		for i := 0; i < count; i++ {
			bbi := tree.nodes[leaves[i]].bb
			for j := i + 1; j < count; j++ {
				cost := bbi.MergedArea(tree.nodes[leaves[j]].bb)
				if cost < minCost {
					iMin, jMin = i, j
					minCost = cost
				}
			}
		}

		index1, index2 := leaves[iMin], leaves[jMin]
		parentIndex := tree.NodeFromPool()
		parent := &tree.nodes[parentIndex]
		child1, child2 := &tree.nodes[index1], &tree.nodes[index2]
		parent.a = index1
		parent.b = index2
		parent.height = 1 + max(child1.height, child2.height)
		parent.bb = child1.bb.Merge(child2.bb)
		parent.parent = nullNode
		child1.parent = parentIndex
		child2.parent = parentIndex

		leaves[jMin] = leaves[count-1]
		leaves[iMin] = parentIndex
		count--
	}

	tree.root = leaves[0]
	tree.Validate()
}

// Validate checks the structure, heights and boxes of the tree and panics on corruption.
func (tree *BBTree) Validate() {
	tree.validateStructure(tree.root)
	tree.validateMetrics(tree.root)

	freeCount := 0
	for freeIndex := tree.freeList; freeIndex != nullNode; freeIndex = tree.nodes[freeIndex].parent {
		assert(0 <= freeIndex && freeIndex < len(tree.nodes), "Free list index out of range: ", freeIndex)
		freeCount++
	}

	assert(tree.Height() == tree.computeHeight(tree.root), "Root height mismatch")
	assert(tree.nodeCount+freeCount == len(tree.nodes), "Node count mismatch")
}

func (tree *BBTree) computeHeight(index int) int {
	if index == nullNode {
		return 0
	}
	node := &tree.nodes[index]
	if node.IsLeaf() {
		return 0
	}
	return 1 + max(tree.computeHeight(node.a), tree.computeHeight(node.b))
}

func (tree *BBTree) validateStructure(index int) {
	if index == nullNode {
		return
	}
	if index == tree.root {
		assert(tree.nodes[index].parent == nullNode, "Root has a parent")
	}

	node := &tree.nodes[index]
	if node.IsLeaf() {
		assert(node.b == nullNode, "Leaf with one child")
		assert(node.height == 0, "Leaf with non zero height")
		return
	}

	assert(0 <= node.a && node.a < len(tree.nodes), "Child out of range")
	assert(0 <= node.b && node.b < len(tree.nodes), "Child out of range")
	assert(tree.nodes[node.a].parent == index, "Child a has the wrong parent")
	assert(tree.nodes[node.b].parent == index, "Child b has the wrong parent")

	tree.validateStructure(node.a)
	tree.validateStructure(node.b)
}

func (tree *BBTree) validateMetrics(index int) {
	if index == nullNode {
		return
	}

	node := &tree.nodes[index]
	if node.IsLeaf() {
		return
	}

	a, b := &tree.nodes[node.a], &tree.nodes[node.b]
	assert(node.height == 1+max(a.height, b.height), "Height mismatch at node ", index)
	assert(node.bb == a.bb.Merge(b.bb), "Box mismatch at node ", index)

	tree.validateMetrics(node.a)
	tree.validateMetrics(node.b)
}
