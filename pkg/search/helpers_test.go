package search

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logStore records the steps run so far. Its state is the log itself,
// so the state expected at a node is the list of steps on its path.
type logStore struct {
	log    []string
	frames []int
}

var _ Store = &logStore{}

func (s *logStore) step(name string) Step {
	return func() (Action, error) {
		s.log = append(s.log, name)
		return nil, nil
	}
}

func (s *logStore) Push() {
	s.frames = append(s.frames, len(s.log))
}

func (s *logStore) PopDelta() Delta {
	start := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	d := slices.Clone(s.log[start:])
	s.log = s.log[:start]
	return d
}

func (s *logStore) PushDelta(d Delta) {
	s.Push()
	s.log = append(s.log, d.([]string)...)
}

func (s *logStore) CurrentState() Snapshot {
	return slices.Clone(s.log)
}

func (s *logStore) RestoreState(snapshot Snapshot) {
	s.log = slices.Clone(snapshot.([]string))
	s.frames = nil
}

// grow returns the action of a node named name that logs its name and
// branches into two children until depth levels are left.
func (s *logStore) grow(name string, depth int) Action {
	return Step(func() (Action, error) {
		s.log = append(s.log, name)
		if depth == 0 {
			return nil, nil
		}
		return Choose(s.grow(name+"0", depth-1), s.grow(name+"1", depth-1)), nil
	})
}

// expectedLog is the log of the node at path in a tree built by grow
// from a root named "r".
func expectedLog(path []int) []string {
	log := []string{"r"}
	name := "r"
	for _, i := range path {
		name += strconv.Itoa(i)
		log = append(log, name)
	}
	return log
}

// failing returns a step that fails propagation.
func failing() Step {
	return func() (Action, error) {
		return nil, Fail("infeasible")
	}
}

// testGoal records how node activation uses it.
type testGoal struct {
	best     float64
	fail     error
	updates  int
	restored []float64
}

func (g *testGoal) BestObjectiveValue() float64 {
	return g.best
}

func (g *testGoal) UpdateBoundForOpenNode() error {
	g.updates++
	return g.fail
}

func (g *testGoal) ReturnBoundToObjectiveValue(value float64) {
	g.restored = append(g.restored, value)
}

// assertViolation asserts that fn panics with a ContractViolation for
// op.
func assertViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation for %s", op)
		var v ContractViolation
		err, ok := r.(error)
		require.True(t, ok, "expected an error, got %v", r)
		require.True(t, errors.As(err, &v), "expected a contract violation, got %v", r)
		assert.Equal(t, op, v.Op)
	}()
	fn()
}

// explore runs a depth first search over t, activating every open node
// it reaches, and calls check after each move.
func explore(t Tree, check func()) {
	exploreWith(t, nil, check)
}

// exploreWith is explore with every activation handed goal.
func exploreWith(t Tree, goal Goal, check func()) {
	for {
		if t.CurrentNode().State() == Open {
			_, _ = t.CurrentNode().Activate(goal)
		}
		check()
		if t.MoveToNextOpenChild() {
			continue
		}
		for {
			if !t.MoveToParent() {
				return
			}
			check()
			if t.MoveToNextOpenChild() {
				break
			}
		}
	}
}
