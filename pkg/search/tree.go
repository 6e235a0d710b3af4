package search

import (
	"github.com/sirupsen/logrus"
)

// Tree is a lazily expanded tree of alternatives together with a
// position in it. Drivers loop over "move to an open node, activate it
// with the current goal, react to the returned technique change"; the
// tree keeps the external store in step through its state manager.
type Tree interface {
	// MoveToRoot moves to the root of this tree.
	MoveToRoot()
	// MoveToParent moves one level up. It returns false at the root.
	MoveToParent() bool
	// MoveToChild moves to the i-th child of the current node, which
	// must be closed.
	MoveToChild(i int)
	// MoveToNextOpenChild moves to the first child of the current
	// node that is still open. It returns false if there is none.
	MoveToNextOpenChild() bool
	CurrentNode() Node
	Depth() int
	ChildCount() int
	// UniqueNodeID returns the id of the current node. Ids are handed
	// out in increasing order, one per coordinate visited by this
	// tree, so a rebuilt node keeps its id.
	UniqueNodeID() int
	ReferenceFor(n Node) Reference
	// ReturnToReference moves to the referenced coordinate, rebuilding
	// nodes on the way when needed.
	ReturnToReference(ref Reference)
	// Subtree returns a tree rooted at the current node that shares
	// nodes and state manager with this one. Over a DeltaStateManager
	// the subtree must be back at its root before this tree moves
	// again, since both push and pop the same trail.
	Subtree() Tree
}

// TreeOption configures a tree.
type TreeOption func(c *treeConfig)

type treeConfig struct {
	logger             *logrus.Entry
	tracer             Tracer
	deactivateOnAscend bool
}

func WithLogger(l *logrus.Entry) TreeOption {
	return func(c *treeConfig) {
		c.logger = l
	}
}

func WithTracer(t Tracer) TreeOption {
	return func(c *treeConfig) {
		c.tracer = t
	}
}

// WithDeactivateOnAscend makes the tree deactivate every closed node it
// leaves upwards. Only the coordinate of such a node is kept; it is
// rebuilt when the tree returns to it. This suits depth-first drivers,
// which only leave a node once all of its children were explored.
func WithDeactivateOnAscend(enabled bool) TreeOption {
	return func(c *treeConfig) {
		c.deactivateOnAscend = enabled
	}
}

var treeDefaults = []TreeOption{
	func(c *treeConfig) {
		if c.logger == nil {
			c.logger = logrus.NewEntry(logrus.New())
		}
	},
	func(c *treeConfig) {
		if c.tracer == nil {
			c.tracer = DefaultTracer{}
		}
	},
}

// tree holds what both traversal strategies share.
type tree struct {
	treeConfig
	arena   *arena
	root    Node
	current Node
	ids     map[string]int
}

func newTree(a *arena, root Node, options []TreeOption) *tree {
	t := &tree{arena: a, root: root, current: root, ids: map[string]int{}}
	for _, option := range append(options, treeDefaults...) {
		option(&t.treeConfig)
	}
	t.visit(MoveJump)
	return t
}

func newRoot(act Action) (*arena, Node) {
	a := newArena()
	return a, Node{a: a, h: a.alloc(Handle{}, -1, 0, true, act)}
}

func (t *tree) subtreeOptions() []TreeOption {
	return []TreeOption{
		WithLogger(t.logger),
		WithTracer(t.tracer),
		WithDeactivateOnAscend(t.deactivateOnAscend),
	}
}

func (t *tree) visit(move Move) {
	key := t.current.Path().Key()
	if _, ok := t.ids[key]; !ok {
		t.ids[key] = len(t.ids)
	}
	t.tracer.Trace(position{move: move, node: t.current})
	t.logger.WithFields(nodeFields(t.current)).Debug(string(move))
}

func (t *tree) CurrentNode() Node {
	return t.current
}

func (t *tree) Depth() int {
	return t.current.Depth()
}

func (t *tree) ChildCount() int {
	return t.current.ChildCount()
}

func (t *tree) UniqueNodeID() int {
	return t.ids[t.current.Path().Key()]
}

// Visited returns how many distinct coordinates this tree has visited.
func (t *tree) Visited() int {
	return len(t.ids)
}

// Root returns the root node of this tree.
func (t *tree) Root() Node {
	return t.root
}

func (t *tree) ReferenceFor(n Node) Reference {
	return referenceFor(n)
}

func (t *tree) descend(sm StateManager, c Node) {
	prev := t.current
	move := MoveDescend
	switch c.State() {
	case Open:
		sm.DescendedToOpenNode(prev, c)
	case Closed:
		sm.DescendedToClosedNode(prev, c)
	case Deactivated:
		sm.DescendedToOpenNode(prev, c)
		c.reactivate(prev)
		move = MoveRebuild
	default:
		violation("moveToChild", c.State(), "cannot move to %s", c)
	}
	t.current = c
	t.visit(move)
}

func (t *tree) ascend(sm StateManager) bool {
	prev := t.current
	if sameNode(prev, t.root) {
		return false
	}
	parent := prev.Parent()
	if parent.IsZero() {
		violation("moveToParent", prev.State(), "%s has no parent", prev)
	}
	sm.AscendedToClosedNode(prev, parent)
	if t.deactivateOnAscend && prev.State() == Closed {
		prev.deactivate()
	}
	t.current = parent
	t.visit(MoveAscend)
	return true
}

func (t *tree) moveToChild(sm StateManager, i int) {
	t.descend(sm, t.current.Child(i))
}

func (t *tree) moveToNextOpenChild(sm StateManager) bool {
	c := t.current.NextOpenChild()
	if c.IsZero() {
		return false
	}
	t.descend(sm, c)
	return true
}

// checkReference panics unless ref lies within this tree.
func (t *tree) checkReference(ref Reference) {
	depth := t.root.Depth()
	if ref.Depth() < depth || ref.Path().Len() != ref.Depth() || !ref.Path().Prefix(depth).Equal(t.root.Path()) {
		violation("returnToReference", stateUnknown, "%s is outside of the tree rooted at %s", ref, t.root)
	}
}

// mustActivate rebuilds an open node that is known to have been
// activated successfully before. The bound is not tightened again; goal
// and objective are recorded on n as its first activation saw them.
func (t *tree) mustActivate(n Node, goal Goal, objective float64) {
	if _, err := n.Activate(nil); err != nil {
		panic(ContractViolation{Op: "rebuild", State: n.State(), Detail: n.String(), Err: err})
	}
	if goal != nil {
		d := n.data("rebuild")
		d.goal = goal
		d.objective = objective
	}
}

// inheritedGoal returns the goal recorded on the parent of n. A node
// rebuilt on the way to a reference is credited with it.
func inheritedGoal(n Node) (Goal, float64) {
	parent := n.Parent()
	if parent.IsZero() {
		return nil, 0
	}
	goal, objective, _ := parent.Goal()
	return goal, objective
}

func restoreGoal(ref Reference) {
	if goal, objective, ok := ref.Goal(); ok {
		goal.ReturnBoundToObjectiveValue(objective)
	}
}
