package store

import (
	"maps"

	"github.com/operator-framework/searchtree/pkg/search"
)

var _ search.Store = &Map[string, int]{}

// Map is a keyed store with an undo trail and whole-state snapshots.
// Writes made while a frame is open are recorded in that frame; popping
// the frame undoes them and returns them as a Delta that can be pushed
// again later. Map is not safe for concurrent use.
type Map[K comparable, V any] struct {
	values map[K]V
	frames []Delta[K, V]
}

// Delta is the list of writes recorded in one frame, in order.
type Delta[K comparable, V any] []Change[K, V]

// Change is one recorded write.
type Change[K comparable, V any] struct {
	Key     K
	Old     V
	HadOld  bool
	New     V
	Deleted bool
}

// Snapshot is a copy of all values of a Map.
type Snapshot[K comparable, V any] map[K]V

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		values: map[K]V{},
	}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *Map[K, V]) Set(key K, value V) {
	old, hadOld := m.values[key]
	m.values[key] = value
	m.record(Change[K, V]{Key: key, Old: old, HadOld: hadOld, New: value})
}

func (m *Map[K, V]) Delete(key K) {
	old, hadOld := m.values[key]
	if !hadOld {
		return
	}
	delete(m.values, key)
	m.record(Change[K, V]{Key: key, Old: old, HadOld: true, Deleted: true})
}

func (m *Map[K, V]) Iterate(fn func(key K, value V) error) error {
	for key, value := range m.values {
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map[K, V]) Len() int {
	return len(m.values)
}

// Depth returns the number of open frames.
func (m *Map[K, V]) Depth() int {
	return len(m.frames)
}

func (m *Map[K, V]) record(c Change[K, V]) {
	if len(m.frames) == 0 {
		return
	}
	top := len(m.frames) - 1
	m.frames[top] = append(m.frames[top], c)
}

func (m *Map[K, V]) Push() {
	m.frames = append(m.frames, nil)
}

// PopDelta undoes the writes of the top frame, newest first, and
// returns them.
func (m *Map[K, V]) PopDelta() search.Delta {
	if len(m.frames) == 0 {
		panic(search.ContractViolation{Op: "popDelta", Detail: "no open frame"})
	}
	top := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]
	for i := len(top) - 1; i >= 0; i-- {
		c := top[i]
		if c.HadOld {
			m.values[c.Key] = c.Old
		} else {
			delete(m.values, c.Key)
		}
	}
	return top
}

// PushDelta redoes the writes of d, oldest first, and opens a frame
// holding them.
func (m *Map[K, V]) PushDelta(d search.Delta) {
	delta, ok := d.(Delta[K, V])
	if !ok {
		panic(search.ContractViolation{Op: "pushDelta", Detail: "foreign delta"})
	}
	for _, c := range delta {
		if c.Deleted {
			delete(m.values, c.Key)
		} else {
			m.values[c.Key] = c.New
		}
	}
	m.frames = append(m.frames, delta)
}

// CurrentState returns a copy of all values.
func (m *Map[K, V]) CurrentState() search.Snapshot {
	return Snapshot[K, V](maps.Clone(m.values))
}

// RestoreState replaces all values with a copy of s and drops the
// trail.
func (m *Map[K, V]) RestoreState(s search.Snapshot) {
	snapshot, ok := s.(Snapshot[K, V])
	if !ok {
		panic(search.ContractViolation{Op: "restoreState", Detail: "foreign snapshot"})
	}
	m.values = maps.Clone(map[K]V(snapshot))
	if m.values == nil {
		m.values = map[K]V{}
	}
	m.frames = nil
}
