package search

import (
	"github.com/sirupsen/logrus"
)

var _ StateManager = &DeltaStateManager{}

// DeltaStateManager keeps the store in sync through its trail: one
// frame per level of the current path. A closed node that is left
// upwards keeps the popped frame, so descending into it again replays
// the delta instead of rerunning its action. It only serves trees that
// move one step at a time.
type DeltaStateManager struct {
	trail  Trail
	logger *logrus.Entry
}

func NewDeltaStateManager(trail Trail, options ...ManagerOption) *DeltaStateManager {
	c := newManagerConfig(options)
	return &DeltaStateManager{trail: trail, logger: c.logger}
}

// DescendedToOpenNode opens a frame for the action cur is about to run.
func (m *DeltaStateManager) DescendedToOpenNode(_, cur Node) {
	m.trail.Push()
	m.logger.WithFields(nodeFields(cur)).Debug("pushed frame")
}

// DescendedToClosedNode pushes the delta cached on cur back onto the
// trail.
func (m *DeltaStateManager) DescendedToClosedNode(_, cur Node) {
	d := cur.stateData()
	if d == nil {
		violation("descendedToClosedNode", cur.State(), "no cached delta for %s", cur)
	}
	m.trail.PushDelta(d)
	cur.setStateData(nil)
	m.logger.WithFields(nodeFields(cur)).Debug("pushed cached delta")
}

// AscendedToClosedNode pops the frame of prev. A closed prev keeps it
// for a later descent; frames of open or pruned nodes are dropped.
func (m *DeltaStateManager) AscendedToClosedNode(prev, _ Node) {
	d := m.trail.PopDelta()
	if prev.State() == Closed {
		prev.setStateData(d)
	}
	m.logger.WithFields(nodeFields(prev)).Debug("popped frame")
}

// JumpedToClosedNode is not supported: a trail can only follow
// adjacent moves.
func (m *DeltaStateManager) JumpedToClosedNode(_, cur Node) {
	violation("jumpedToClosedNode", cur.State(), "delta state manager cannot serve jumps")
}
