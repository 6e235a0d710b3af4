package search

var _ Tree = &JumpingTree{}

// JumpingTree can move to any node it has seen in a single step. Only a
// RecalculatingStateManager can keep the store consistent across such
// jumps, so it is the only manager accepted.
type JumpingTree struct {
	*tree
	manager *RecalculatingStateManager
}

// NewJumpingTree returns a tree whose root runs act.
func NewJumpingTree(act Action, manager *RecalculatingStateManager, options ...TreeOption) *JumpingTree {
	a, root := newRoot(act)
	return &JumpingTree{tree: newTree(a, root, options), manager: manager}
}

func (t *JumpingTree) MoveToRoot() {
	t.JumpTo(t.root)
}

func (t *JumpingTree) MoveToParent() bool {
	return t.ascend(t.manager)
}

func (t *JumpingTree) MoveToChild(i int) {
	t.moveToChild(t.manager, i)
}

func (t *JumpingTree) MoveToNextOpenChild() bool {
	return t.moveToNextOpenChild(t.manager)
}

// JumpTo makes n the current node. A closed node is reached directly.
// An open node is reached through its parent, so that the store holds
// the state its action expects. A deactivated node is rebuilt.
func (t *JumpingTree) JumpTo(n Node) {
	switch n.State() {
	case Closed:
		if sameNode(n, t.current) {
			return
		}
		t.manager.JumpedToClosedNode(t.current, n)
		t.current = n
		t.visit(MoveJump)
	case Open:
		if sameNode(n, t.current) {
			return
		}
		if parent := n.Parent(); !parent.IsZero() {
			t.JumpTo(parent)
		}
		t.manager.DescendedToOpenNode(t.current, n)
		t.current = n
		t.visit(MoveDescend)
	case Deactivated:
		t.ReturnToReference(referenceFor(n))
	default:
		violation("jumpTo", n.State(), "cannot jump to %s", n)
	}
}

// ReturnToReference walks the referenced path from the root without
// moving, and only touches the store where nodes on the path have to
// be rebuilt.
func (t *JumpingTree) ReturnToReference(ref Reference) {
	t.checkReference(ref)
	n := t.root
	var parent Node
	for d := t.root.Depth(); d < ref.Depth(); d++ {
		goal, objective := inheritedGoal(n)
		t.materialize(n, parent, goal, objective)
		parent, n = n, n.Child(ref.Path().At(d))
	}
	if !ref.Closed() {
		t.JumpTo(n)
		return
	}
	goal, objective, _ := ref.Goal()
	t.materialize(n, parent, goal, objective)
	t.JumpTo(n)
	restoreGoal(ref)
}

// materialize makes sure n is closed. parent is the closed parent of n
// and is only needed to rebuild a deactivated node. An open n is
// credited with goal.
func (t *JumpingTree) materialize(n, parent Node, goal Goal, objective float64) {
	switch n.State() {
	case Closed:
	case Open:
		t.JumpTo(n)
		t.mustActivate(n, goal, objective)
	case Deactivated:
		if parent.IsZero() {
			violation("rebuild", n.State(), "no parent to rebuild %s under", n)
		}
		t.JumpTo(parent)
		t.descend(t.manager, n)
	default:
		violation("rebuild", n.State(), "cannot rebuild %s", n)
	}
}

// Disconnect parks an open node outside the tree, for example in a
// driver's frontier, so that it survives the deactivation of its
// parent. The current node cannot be disconnected.
func (t *JumpingTree) Disconnect(n Node) {
	if sameNode(n, t.current) {
		violation("disconnect", n.State(), "cannot disconnect the current node")
	}
	n.disconnect()
}

// Reconnect attaches a disconnected node to its parent again, rebuilding
// the parent first if it was deactivated. It leaves the tree positioned
// at the parent.
func (t *JumpingTree) Reconnect(n Node) {
	path := n.Path()
	if path.Len() == 0 {
		violation("reconnect", n.State(), "the root has no parent")
	}
	parentPath := path.Prefix(path.Len() - 1)
	t.ReturnToReference(Reference{
		depth:  parentPath.Len(),
		binary: parentPath.Binary(),
		path:   parentPath,
		closed: true,
	})
	n.reconnect(t.current)
}

// Discard prunes a disconnected node that will not be reconnected and
// frees it.
func (t *JumpingTree) Discard(n Node) {
	if n.State() != Disconnected {
		violation("discard", n.State(), "only disconnected nodes can be discarded")
	}
	n.prune()
}

func (t *JumpingTree) Subtree() Tree {
	return &JumpingTree{tree: newTree(t.arena, t.current, t.subtreeOptions()), manager: t.manager}
}
