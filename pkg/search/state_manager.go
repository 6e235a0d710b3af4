package search

import (
	"github.com/sirupsen/logrus"
)

// Delta is the opaque undo/redo record of one trail frame.
type Delta = interface{}

// Snapshot is an opaque, complete copy of a store's state.
type Snapshot = interface{}

// Trail is the incremental side of the external store.
type Trail interface {
	// Push opens a new undo frame.
	Push()
	// PushDelta re-applies a delta produced by PopDelta and leaves it
	// as the top frame.
	PushDelta(d Delta)
	// PopDelta undoes the top frame and returns it.
	PopDelta() Delta
}

// Snapshotter is the whole-state side of the external store.
type Snapshotter interface {
	CurrentState() Snapshot
	RestoreState(s Snapshot)
}

// Store is an external mutable problem state usable with every state
// manager.
type Store interface {
	Trail
	Snapshotter
}

// StateManager keeps the external store consistent with the node a
// tree is positioned at. Trees call it on every move, before the move
// takes effect; it is the only component allowed to push, pop,
// snapshot or restore the store.
type StateManager interface {
	DescendedToOpenNode(prev, cur Node)
	DescendedToClosedNode(prev, cur Node)
	AscendedToClosedNode(prev, cur Node)
	JumpedToClosedNode(prev, cur Node)
}

// ManagerOption configures a state manager.
type ManagerOption func(m *managerConfig)

type managerConfig struct {
	logger           *logrus.Entry
	snapshotInterval int
}

// WithManagerLogger sets the logger a state manager reports restores to.
func WithManagerLogger(l *logrus.Entry) ManagerOption {
	return func(m *managerConfig) {
		m.logger = l
	}
}

// WithSnapshotInterval makes a recalculating manager keep snapshots
// only for nodes whose depth is a multiple of k; states of the other
// nodes are recomputed from the nearest snapshot above them. The root
// always keeps one.
func WithSnapshotInterval(k int) ManagerOption {
	return func(m *managerConfig) {
		m.snapshotInterval = k
	}
}

var managerDefaults = []ManagerOption{
	func(m *managerConfig) {
		if m.logger == nil {
			m.logger = logrus.NewEntry(logrus.New())
		}
	},
	func(m *managerConfig) {
		if m.snapshotInterval < 1 {
			m.snapshotInterval = 1
		}
	},
}

func newManagerConfig(options []ManagerOption) managerConfig {
	var c managerConfig
	for _, option := range append(options, managerDefaults...) {
		option(&c)
	}
	return c
}

func nodeFields(n Node) logrus.Fields {
	return logrus.Fields{
		"depth": n.Depth(),
		"path":  n.Path().String(),
		"state": n.State().String(),
	}
}
