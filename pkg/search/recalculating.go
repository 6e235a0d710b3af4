package search

import (
	"github.com/sirupsen/logrus"
)

var _ StateManager = &RecalculatingStateManager{}

// RecalculatingStateManager guarantees that after every move the store
// holds exactly the state produced by running every action from the
// root to the destination. It restores the snapshot taken at the
// destination when there is one, and otherwise restores the nearest
// snapshot above it and replays the actions below. It can follow
// arbitrary jumps.
//
// Snapshots are taken lazily: when the tree leaves a closed node the
// store still holds that node's state, and it is copied then.
type RecalculatingStateManager struct {
	store    Snapshotter
	baseline Snapshot
	interval int
	logger   *logrus.Entry

	// last is the destination of the latest move. A tree whose
	// previous node differs from it shares this manager with a subtree
	// that moved since, and the store does not hold its state.
	last    Node
	tracked bool

	restores int
	replays  int
}

// NewRecalculatingStateManager captures the current state of store as
// the state before the root's action runs, so the store must be fully
// set up when the manager is created.
func NewRecalculatingStateManager(store Snapshotter, options ...ManagerOption) *RecalculatingStateManager {
	c := newManagerConfig(options)
	return &RecalculatingStateManager{
		store:    store,
		baseline: store.CurrentState(),
		interval: c.snapshotInterval,
		logger:   c.logger,
	}
}

// DescendedToOpenNode brings the store to the state of the parent of
// cur. A deactivated cur has lost its parent link; trees only rebuild it
// from its parent, which is then prev.
func (m *RecalculatingStateManager) DescendedToOpenNode(prev, cur Node) {
	parent := cur.Parent()
	if parent.IsZero() && cur.State() == Deactivated {
		parent = prev
	}
	m.ensure(prev, parent)
	m.moved(cur)
}

func (m *RecalculatingStateManager) DescendedToClosedNode(prev, cur Node) {
	m.ensure(prev, cur)
	m.moved(cur)
}

func (m *RecalculatingStateManager) AscendedToClosedNode(prev, cur Node) {
	m.ensure(prev, cur)
	m.moved(cur)
}

func (m *RecalculatingStateManager) JumpedToClosedNode(prev, cur Node) {
	m.ensure(prev, cur)
	m.moved(cur)
}

func (m *RecalculatingStateManager) moved(cur Node) {
	m.last = cur
	m.tracked = true
}

// Restores returns how many times the store was restored from a
// snapshot.
func (m *RecalculatingStateManager) Restores() int {
	return m.restores
}

// Replays returns how many node actions were rerun to recompute a
// state.
func (m *RecalculatingStateManager) Replays() int {
	return m.replays
}

// settle records a snapshot for prev if it is closed and reports which
// node's state the store holds now. The zero Node stands for the
// baseline. ok is false when the store state is unknown, as after a
// failed activation.
func (m *RecalculatingStateManager) settle(prev Node) (Node, bool) {
	if prev.IsZero() || !prev.Valid() || (m.tracked && !sameNode(prev, m.last)) {
		return Node{}, false
	}
	switch prev.State() {
	case Closed:
		m.capture(prev)
		return prev, true
	case Open:
		return prev.Parent(), true
	}
	return Node{}, false
}

// ensure brings the store to the state of target, or to the baseline
// when target is the zero Node.
func (m *RecalculatingStateManager) ensure(prev, target Node) {
	if at, ok := m.settle(prev); ok && sameNode(at, target) {
		return
	}
	m.restore(target)
}

func (m *RecalculatingStateManager) restore(target Node) {
	var chain []Node
	from := target
	for !from.IsZero() && from.stateData() == nil {
		chain = append(chain, from)
		from = from.Parent()
	}
	if from.IsZero() {
		m.store.RestoreState(m.baseline)
	} else {
		m.store.RestoreState(from.stateData())
	}
	m.restores++
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].replay()
		m.replays++
		m.capture(chain[i])
	}
	if !target.IsZero() {
		m.logger.WithFields(nodeFields(target)).WithField("replayed", len(chain)).Debug("restored state")
	}
}

func (m *RecalculatingStateManager) capture(n Node) {
	if n.Depth()%m.interval != 0 || n.stateData() != nil {
		return
	}
	n.setStateData(m.store.CurrentState())
}

func sameNode(a, b Node) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() && b.IsZero()
	}
	return a.a == b.a && a.h == b.h
}
