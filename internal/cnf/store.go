package cnf

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/searchtree/pkg/search"
)

const unsatisfiable = -1

var _ search.Store = &Store{}

// Store holds a partial assignment of a CNF problem on top of a gini
// solver. Every assigned literal is assumed and unit propagated in its
// own test scope; a conflict found by propagation is a propagation
// failure. Trail frames group test scopes, so popping a frame untests
// them and its delta is the list of literals that were assumed in it.
type Store struct {
	g         inter.S
	variables int
	values    map[z.Var]bool
	frames    []*frame
	buffer    []z.Lit
}

type frame struct {
	assumed  []z.Lit
	assigned []z.Var
	scopes   int
}

// Delta lists the literals assumed in one frame.
type Delta []z.Lit

// Snapshot lists the literals assumed in every frame, base first.
type Snapshot [][]z.Lit

// NewStore teaches every clause of p to a new gini solver.
func NewStore(p *Problem) *Store {
	g := gini.New()
	for _, clause := range p.Clauses {
		for _, lit := range clause {
			g.Add(z.Dimacs2Lit(lit))
		}
		g.Add(z.LitNull)
	}
	return newStore(g, p.Variables)
}

func newStore(g inter.S, variables int) *Store {
	return &Store{
		g:         g,
		variables: variables,
		values:    map[z.Var]bool{},
		frames:    []*frame{{}},
	}
}

// Assign assumes m and propagates it.
func (s *Store) Assign(m z.Lit) error {
	if value, ok := s.values[m.Var()]; ok {
		if value == m.IsPos() {
			return nil
		}
		return search.Fail("literal %d contradicts the current assignment", m.Dimacs())
	}
	top := s.frames[len(s.frames)-1]
	s.g.Assume(m)
	var result int
	result, s.buffer = s.g.Test(s.buffer[:0])
	top.scopes++
	top.assumed = append(top.assumed, m)
	s.set(top, m)
	for _, implied := range s.buffer {
		s.set(top, implied)
	}
	if result == unsatisfiable {
		return search.Fail("literal %d is unsatisfiable under the current assignment", m.Dimacs())
	}
	return nil
}

func (s *Store) set(f *frame, m z.Lit) {
	if _, ok := s.values[m.Var()]; ok {
		return
	}
	s.values[m.Var()] = m.IsPos()
	f.assigned = append(f.assigned, m.Var())
}

// Value returns the value assigned to the variable v, in DIMACS
// numbering.
func (s *Store) Value(v int) (value bool, assigned bool) {
	value, assigned = s.values[z.Var(v)]
	return
}

// Unassigned returns the lowest numbered variable without a value.
func (s *Store) Unassigned() (int, bool) {
	for v := 1; v <= s.variables; v++ {
		if _, ok := s.values[z.Var(v)]; !ok {
			return v, true
		}
	}
	return 0, false
}

// Model returns every variable as a signed DIMACS literal. Unassigned
// variables are reported positive.
func (s *Store) Model() []int {
	model := make([]int, s.variables)
	for v := 1; v <= s.variables; v++ {
		model[v-1] = v
		if value, ok := s.values[z.Var(v)]; ok && !value {
			model[v-1] = -v
		}
	}
	return model
}

func (s *Store) Push() {
	s.frames = append(s.frames, &frame{})
}

func (s *Store) PopDelta() search.Delta {
	if len(s.frames) < 2 {
		panic(search.ContractViolation{Op: "popDelta", Detail: "no open frame"})
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.drop(top)
	return Delta(top.assumed)
}

func (s *Store) drop(f *frame) {
	for i := 0; i < f.scopes; i++ {
		s.g.Untest()
	}
	for _, v := range f.assigned {
		delete(s.values, v)
	}
}

func (s *Store) PushDelta(d search.Delta) {
	delta, ok := d.(Delta)
	if !ok {
		panic(search.ContractViolation{Op: "pushDelta", Detail: "foreign delta"})
	}
	s.Push()
	s.replay(delta)
}

func (s *Store) replay(lits []z.Lit) {
	for _, m := range lits {
		if err := s.Assign(m); err != nil {
			panic(search.ContractViolation{Op: "replay", Err: err})
		}
	}
}

func (s *Store) CurrentState() search.Snapshot {
	snapshot := make(Snapshot, len(s.frames))
	for i, f := range s.frames {
		snapshot[i] = append([]z.Lit(nil), f.assumed...)
	}
	return snapshot
}

func (s *Store) RestoreState(snapshot search.Snapshot) {
	frames, ok := snapshot.(Snapshot)
	if !ok || len(frames) == 0 {
		panic(search.ContractViolation{Op: "restoreState", Detail: "foreign snapshot"})
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		s.drop(s.frames[i])
	}
	s.frames = []*frame{{}}
	for i, lits := range frames {
		if i > 0 {
			s.Push()
		}
		s.replay(lits)
	}
}

// Decide returns the action that branches on the lowest unassigned
// variable, true first, until every variable has a value.
func (s *Store) Decide() search.Action {
	var decide search.Step
	decide = func() (search.Action, error) {
		v, ok := s.Unassigned()
		if !ok {
			return nil, nil
		}
		return search.Choose(
			search.Combine(s.assign(z.Var(v).Pos()), decide),
			search.Combine(s.assign(z.Var(v).Neg()), decide),
		), nil
	}
	return decide
}

func (s *Store) assign(m z.Lit) search.Step {
	return func() (search.Action, error) {
		return nil, s.Assign(m)
	}
}
