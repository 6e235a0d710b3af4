package search

var _ Tree = &CrawlingTree{}

// CrawlingTree only ever moves one step at a time, between a node and
// one of its children. It works with every state manager and is the
// only tree a DeltaStateManager can serve.
type CrawlingTree struct {
	*tree
	manager StateManager
}

// NewCrawlingTree returns a tree whose root runs act.
func NewCrawlingTree(act Action, manager StateManager, options ...TreeOption) *CrawlingTree {
	a, root := newRoot(act)
	return &CrawlingTree{tree: newTree(a, root, options), manager: manager}
}

func (t *CrawlingTree) MoveToRoot() {
	for t.MoveToParent() {
	}
}

func (t *CrawlingTree) MoveToParent() bool {
	return t.ascend(t.manager)
}

func (t *CrawlingTree) MoveToChild(i int) {
	t.moveToChild(t.manager, i)
}

func (t *CrawlingTree) MoveToNextOpenChild() bool {
	return t.moveToNextOpenChild(t.manager)
}

// ReturnToReference walks up to the deepest common ancestor of the
// current node and the referenced one, then back down, rebuilding
// nodes that were deactivated or dropped along the way.
func (t *CrawlingTree) ReturnToReference(ref Reference) {
	t.checkReference(ref)
	if ref.Depth() == 0 {
		t.MoveToRoot()
	} else {
		common := t.current.Path().CommonPrefix(ref.Path())
		for t.current.Depth() > common && t.MoveToParent() {
		}
	}
	for d := t.current.Depth(); d < ref.Depth(); d++ {
		t.closeCurrent(inheritedGoal(t.current))
		t.MoveToChild(ref.Path().At(d))
	}
	if ref.Closed() {
		goal, objective, _ := ref.Goal()
		t.closeCurrent(goal, objective)
		restoreGoal(ref)
	}
}

func (t *CrawlingTree) closeCurrent(goal Goal, objective float64) {
	if t.current.State() == Open {
		t.mustActivate(t.current, goal, objective)
	}
}

func (t *CrawlingTree) Subtree() Tree {
	return &CrawlingTree{tree: newTree(t.arena, t.current, t.subtreeOptions()), manager: t.manager}
}
