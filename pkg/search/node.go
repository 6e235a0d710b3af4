package search

import (
	"fmt"
)

// State is the lifecycle state of a node.
type State int

const (
	stateUnknown State = iota
	// Open nodes have not run their action yet.
	Open
	// Closed nodes ran their action and own their children.
	Closed
	// Pruned nodes are infeasible or abandoned. Pruned is terminal.
	Pruned
	// Deactivated nodes dropped their children, state data and parent
	// link; they only remember their coordinate and can be rebuilt.
	Deactivated
	// Disconnected nodes are open nodes temporarily detached from
	// their parent.
	Disconnected
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Pruned:
		return "pruned"
	case Deactivated:
		return "deactivated"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}

type node struct {
	gen  uint32
	live bool

	parent   Handle
	childNum int
	depth    int
	binary   bool

	state    State
	action   Action
	children []Handle

	// stateData belongs to the tree's state manager.
	stateData interface{}

	goal      Goal
	objective float64

	// path is cached while the node cannot reach the root.
	path    PathAddress
	hasPath bool
}

// Node is a handle to one point of the search space. Nodes compare by
// coordinate (depth and path from the root), not by identity: a node
// that was deactivated and rebuilt is Equal to its former self.
//
// Only the tree that created a node drives its lifecycle; drivers call
// Activate and inspect nodes but never transition them otherwise.
type Node struct {
	a *arena
	h Handle
}

// IsZero reports whether n refers to no node.
func (n Node) IsZero() bool {
	return n.a == nil || n.h.IsZero()
}

func (n Node) data(op string) *node {
	if n.IsZero() {
		violation(op, stateUnknown, "nil node")
	}
	d, ok := n.a.get(n.h)
	if !ok {
		violation(op, stateUnknown, "stale node handle %d/%d", n.h.slot, n.h.gen)
	}
	return d
}

func (n Node) wrap(h Handle) Node {
	if h.IsZero() {
		return Node{}
	}
	return Node{a: n.a, h: h}
}

// Valid reports whether the handle still addresses a live node.
func (n Node) Valid() bool {
	if n.IsZero() {
		return false
	}
	_, ok := n.a.get(n.h)
	return ok
}

// Handle returns the arena handle of n.
func (n Node) Handle() Handle {
	return n.h
}

func (n Node) State() State {
	return n.data("state").state
}

func (n Node) Depth() int {
	return n.data("depth").depth
}

// ChildNum returns the index of n within its parent, or -1 for the
// root.
func (n Node) ChildNum() int {
	return n.data("childNum").childNum
}

// Binary reports whether every step from the root to n took child 0
// or 1, so that its path is stored as a bitset.
func (n Node) Binary() bool {
	return n.data("binary").binary
}

// Parent returns the parent node, or the zero Node for the root and for
// deactivated or disconnected nodes.
func (n Node) Parent() Node {
	return n.wrap(n.data("parent").parent)
}

func (n Node) ChildCount() int {
	return len(n.data("childCount").children)
}

// Child returns the i-th child of a closed node.
func (n Node) Child(i int) Node {
	d := n.data("child")
	if i < 0 || i >= len(d.children) {
		violation("child", d.state, "index %d out of range [0, %d)", i, len(d.children))
	}
	return n.wrap(d.children[i])
}

func (n Node) Children() []Node {
	d := n.data("children")
	children := make([]Node, len(d.children))
	for i, c := range d.children {
		children[i] = n.wrap(c)
	}
	return children
}

// NextOpenChild returns the first child that has not been activated
// yet, or the zero Node if there is none.
func (n Node) NextOpenChild() Node {
	for _, c := range n.data("nextOpenChild").children {
		if d, ok := n.a.get(c); ok && d.state == Open {
			return n.wrap(c)
		}
	}
	return Node{}
}

// Goal returns the goal recorded by the last activation and the best
// objective value it reported at that time.
func (n Node) Goal() (Goal, float64, bool) {
	d := n.data("goal")
	return d.goal, d.objective, d.goal != nil
}

// Path returns the route from the root to n.
func (n Node) Path() PathAddress {
	d := n.data("path")
	if d.hasPath {
		return d.path
	}
	var chain []*node
	for cur := d; ; {
		chain = append(chain, cur)
		if cur.parent.IsZero() {
			break
		}
		parent, ok := n.a.get(cur.parent)
		if !ok {
			violation("path", cur.state, "broken parent link at depth %d", cur.depth)
		}
		if parent.hasPath {
			return extendPath(parent.path, chain)
		}
		cur = parent
	}
	if root := chain[len(chain)-1]; root.depth != 0 {
		violation("path", root.state, "detached node at depth %d has no cached path", root.depth)
	}
	return extendPath(rootPath(), chain[:len(chain)-1])
}

// extendPath appends the steps of chain, which is ordered from the
// deepest node upwards, to p.
func extendPath(p PathAddress, chain []*node) PathAddress {
	for i := len(chain) - 1; i >= 0; i-- {
		p = p.child(chain[i].childNum, chain[i].binary)
	}
	return p
}

// Equal reports whether n and o describe the same tree coordinate.
func (n Node) Equal(o Node) bool {
	if n.IsZero() || o.IsZero() {
		return n.IsZero() && o.IsZero()
	}
	if n.a == o.a && n.h == o.h {
		return true
	}
	return n.Depth() == o.Depth() && n.Binary() == o.Binary() && n.Path().Equal(o.Path())
}

// Hash returns a hash consistent with Equal.
func (n Node) Hash() uint64 {
	return n.Path().Hash()
}

func (n Node) String() string {
	if !n.Valid() {
		return "node(<invalid>)"
	}
	d := n.data("string")
	return fmt.Sprintf("node(depth=%d path=%s state=%s)", d.depth, n.Path(), d.state)
}

// Activate runs the action of an open node. If goal is not nil its best
// objective value is recorded and its bound is tightened first. The
// action is drained until it finishes or yields a choice point, whose
// alternatives become the children of n. Any technique change met on
// the way is returned, merged field by field.
//
// On a propagation failure n is pruned and the failure is returned.
func (n Node) Activate(goal Goal) (*TechniqueChange, error) {
	d := n.data("activate")
	if d.state != Open {
		violation("activate", d.state, "only open nodes can be activated")
	}
	if goal != nil {
		d.goal = goal
		d.objective = goal.BestObjectiveValue()
		if err := goal.UpdateBoundForOpenNode(); err != nil {
			n.prune()
			return nil, err
		}
	}
	change, err := n.expand(d)
	if err != nil {
		n.prune()
		return nil, err
	}
	d.state = Closed
	return change, nil
}

func (n Node) expand(d *node) (*TechniqueChange, error) {
	alternatives, change, err := drain(d.action)
	if err != nil {
		return nil, err
	}
	if len(alternatives) == 0 {
		d.children = nil
		return change, nil
	}
	children := make([]Handle, len(alternatives))
	for i, alternative := range alternatives {
		children[i] = n.a.alloc(n.h, i, d.depth+1, d.binary && i < 2, alternative)
	}
	d.children = children
	return change, nil
}

// reactivate rebuilds a deactivated node under parent by running the
// same action again. The action succeeded before from the same
// upstream state, so a failure here means the store and the tree
// disagree; it is reported as a contract violation.
func (n Node) reactivate(parent Node) {
	d := n.data("reactivate")
	if d.state != Deactivated {
		violation("reactivate", d.state, "only deactivated nodes can be reactivated")
	}
	n.attach(d, parent, "reactivate")
	if d.goal != nil {
		d.goal.ReturnBoundToObjectiveValue(d.objective)
	}
	if _, err := n.expand(d); err != nil {
		panic(ContractViolation{Op: "reactivate", State: d.state, Detail: n.String(), Err: err})
	}
	d.state = Closed
}

// replay runs the action of a closed node again for its side effects
// only; the children are left alone.
func (n Node) replay() {
	d := n.data("replay")
	if d.state != Closed {
		violation("replay", d.state, "only closed nodes can be replayed")
	}
	if _, _, err := drain(d.action); err != nil {
		panic(ContractViolation{Op: "replay", State: d.state, Detail: n.String(), Err: err})
	}
}

// deactivate caches the path of a closed node and drops its children,
// state data and parent link.
func (n Node) deactivate() {
	d := n.data("deactivate")
	if d.state != Closed {
		violation("deactivate", d.state, "only closed nodes can be deactivated")
	}
	d.path = n.Path()
	d.hasPath = true
	for _, c := range d.children {
		n.a.release(c)
	}
	d.children = nil
	d.stateData = nil
	d.parent = Handle{}
	d.state = Deactivated
}

// disconnect detaches an open node from its parent, keeping its action.
func (n Node) disconnect() {
	d := n.data("disconnect")
	if d.state != Open {
		violation("disconnect", d.state, "only open nodes can be disconnected")
	}
	d.path = n.Path()
	d.hasPath = true
	d.parent = Handle{}
	d.state = Disconnected
}

// reconnect attaches a disconnected node to parent again. If parent was
// rebuilt in the meantime the freshly built child at the same index is
// replaced by n.
func (n Node) reconnect(parent Node) {
	d := n.data("reconnect")
	if d.state != Disconnected {
		violation("reconnect", d.state, "only disconnected nodes can be reconnected")
	}
	p := parent.data("reconnect")
	if p.state != Closed || d.childNum >= len(p.children) {
		violation("reconnect", d.state, "parent %s has no child %d", parent, d.childNum)
	}
	if placeholder := p.children[d.childNum]; placeholder != n.h {
		n.a.release(placeholder)
		p.children[d.childNum] = n.h
	}
	n.attach(d, parent, "reconnect")
	d.state = Open
}

func (n Node) attach(d *node, parent Node, op string) {
	p := parent.data(op)
	if d.hasPath {
		if !parent.Path().child(d.childNum, d.binary).Equal(d.path) {
			violation(op, d.state, "parent %s is not the parent of %s", parent, d.path)
		}
	}
	if d.childNum >= len(p.children) || p.children[d.childNum] != n.h {
		violation(op, d.state, "node is not child %d of %s", d.childNum, parent)
	}
	d.parent = parent.h
	d.hasPath = false
}

// prune drops the action, children and state data. It is legal from
// every state and cannot be undone. A disconnected node is listed by no
// parent, so its slot is freed as well.
func (n Node) prune() {
	d := n.data("prune")
	parked := d.state == Disconnected
	for _, c := range d.children {
		n.a.release(c)
	}
	d.action = nil
	d.children = nil
	d.stateData = nil
	d.state = Pruned
	if parked {
		n.a.release(n.h)
	}
}

func (n Node) stateData() interface{} {
	return n.data("stateData").stateData
}

func (n Node) setStateData(v interface{}) {
	n.data("setStateData").stateData = v
}
