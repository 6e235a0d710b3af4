package search

// Handle addresses a node slot in an arena. The generation makes
// handles to freed slots detectable; the zero Handle addresses nothing.
type Handle struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether h addresses no node.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// arena owns every node of one search tree and of the subtrees derived
// from it. Parent and child links are handles, so freeing a subtree is
// a generation bump per slot.
type arena struct {
	nodes []*node
	free  []uint32
}

func newArena() *arena {
	return &arena{}
}

func (a *arena) alloc(parent Handle, childNum, depth int, binary bool, act Action) Handle {
	var slot uint32
	if len(a.free) > 0 {
		slot = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
	} else {
		slot = uint32(len(a.nodes))
		a.nodes = append(a.nodes, &node{})
	}
	n := a.nodes[slot]
	*n = node{
		gen:      n.gen + 1,
		live:     true,
		parent:   parent,
		childNum: childNum,
		depth:    depth,
		binary:   binary,
		state:    Open,
		action:   act,
	}
	return Handle{slot: slot, gen: n.gen}
}

func (a *arena) get(h Handle) (*node, bool) {
	if h.IsZero() || int(h.slot) >= len(a.nodes) {
		return nil, false
	}
	n := a.nodes[h.slot]
	if !n.live || n.gen != h.gen {
		return nil, false
	}
	return n, true
}

// release frees h and every descendant still attached to it.
// Disconnected nodes are skipped: they no longer belong to the
// subtree being dropped.
func (a *arena) release(h Handle) {
	n, ok := a.get(h)
	if !ok || n.state == Disconnected {
		return
	}
	for _, c := range n.children {
		a.release(c)
	}
	n.live = false
	n.children = nil
	n.action = nil
	n.stateData = nil
	n.goal = nil
	a.free = append(a.free, h.slot)
}

// size returns the number of live nodes.
func (a *arena) size() int {
	return len(a.nodes) - len(a.free)
}
