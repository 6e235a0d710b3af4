package search

import (
	"fmt"
	"slices"
)

// Action is the unit of work run inside a node. Perform runs the
// action's side effects and returns the next action to run in the same
// node, or nil when the node is finished. A propagation failure means
// the branch is infeasible.
//
// The set of actions is closed: Step, *Choice, *Combined and
// *TechniqueChange are the only implementations.
type Action interface {
	Perform() (Action, error)
	action()
}

// Step is a plain side-effecting action.
type Step func() (Action, error)

func (s Step) Perform() (Action, error) {
	return s()
}

func (Step) action() {}

// Choice signals branching into two or more alternatives. It is never
// executed in place: node activation recognizes it and creates one
// child per alternative.
type Choice struct {
	alternatives []Action
}

// Choose returns a choice point over the given alternatives, in
// order. At least two alternatives are required.
func Choose(alternatives ...Action) *Choice {
	if len(alternatives) < 2 {
		violation("choose", stateUnknown, "a choice point needs at least 2 alternatives, got %d", len(alternatives))
	}
	return &Choice{alternatives: slices.Clone(alternatives)}
}

// Perform is a no-op; only node activation consumes choice points.
func (*Choice) Perform() (Action, error) {
	return nil, nil
}

func (*Choice) action() {}

// Alternatives returns a copy of the alternatives in child order.
func (c *Choice) Alternatives() []Action {
	return slices.Clone(c.alternatives)
}

// Len returns the number of alternatives.
func (c *Choice) Len() int {
	return len(c.alternatives)
}

// Combined runs a sequence of actions within one node. Internally it is
// a stack whose last element runs first.
type Combined struct {
	stack []Action
}

// Combine returns an action running the given actions in order. Nil
// actions are skipped.
func Combine(actions ...Action) *Combined {
	stack := make([]Action, 0, len(actions))
	for i := len(actions) - 1; i >= 0; i-- {
		if actions[i] != nil {
			stack = append(stack, actions[i])
		}
	}
	return &Combined{stack: stack}
}

// Perform pops and runs actions until the stack is empty, a choice
// point is reached or a technique change is reached. Nested
// combinations are spliced into the stack. A choice point comes back
// with every alternative followed by the rest of the stack, so the
// remaining work runs exactly once in whichever branch is taken. The
// receiver is left untouched so that the same action can be replayed.
func (c *Combined) Perform() (Action, error) {
	stack := slices.Clone(c.stack)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch a := top.(type) {
		case *Combined:
			stack = append(stack, a.stack...)
		case *Choice:
			if len(stack) == 0 {
				return a, nil
			}
			alternatives := make([]Action, len(a.alternatives))
			for i, alternative := range a.alternatives {
				alternatives[i] = &Combined{stack: append(slices.Clone(stack), alternative)}
			}
			return &Choice{alternatives: alternatives}, nil
		case *TechniqueChange:
			if len(stack) == 0 {
				return a, nil
			}
			if a.next != nil {
				stack = append(stack, a.next)
			}
			return a.withNext(&Combined{stack: stack}), nil
		case Step:
			next, err := a.Perform()
			if err != nil {
				return nil, err
			}
			if next != nil {
				stack = append(stack, next)
			}
		default:
			panic(fmt.Sprintf("unknown action type %T", top))
		}
	}
	return nil, nil
}

func (*Combined) action() {}

// Len returns the number of actions left on the stack, counting
// nested combinations as one.
func (c *Combined) Len() int {
	return len(c.stack)
}

// TechniqueChange asks the driver to switch goal, search technique or
// iteration limit. Every field is optional. An optional continuation
// runs after the overlay has been recorded.
type TechniqueChange struct {
	goal      Goal
	technique Technique
	limit     int
	hasLimit  bool
	next      Action
}

// ChangeOption sets one field of a TechniqueChange.
type ChangeOption func(t *TechniqueChange)

// WithGoal sets the goal to switch to.
func WithGoal(g Goal) ChangeOption {
	return func(t *TechniqueChange) {
		t.goal = g
	}
}

// WithTechnique sets the technique to switch to.
func WithTechnique(technique Technique) ChangeOption {
	return func(t *TechniqueChange) {
		t.technique = technique
	}
}

// WithLimit sets the iteration limit the driver checks between
// activations.
func WithLimit(n int) ChangeOption {
	return func(t *TechniqueChange) {
		t.limit = n
		t.hasLimit = true
	}
}

// WithContinuation sets the action to run after the overlay.
func WithContinuation(next Action) ChangeOption {
	return func(t *TechniqueChange) {
		t.next = next
	}
}

// ChangeTechnique returns a technique-change overlay.
func ChangeTechnique(options ...ChangeOption) *TechniqueChange {
	t := &TechniqueChange{}
	for _, option := range options {
		option(t)
	}
	return t
}

// Perform returns the continuation.
func (t *TechniqueChange) Perform() (Action, error) {
	return t.next, nil
}

func (*TechniqueChange) action() {}

// Goal returns the requested goal, if any.
func (t *TechniqueChange) Goal() (Goal, bool) {
	return t.goal, t.goal != nil
}

// Technique returns the requested technique, if any.
func (t *TechniqueChange) Technique() (Technique, bool) {
	return t.technique, t.technique != nil
}

// Limit returns the requested iteration limit, if any.
func (t *TechniqueChange) Limit() (int, bool) {
	return t.limit, t.hasLimit
}

// Continuation returns the action that runs after the overlay.
func (t *TechniqueChange) Continuation() Action {
	return t.next
}

func (t *TechniqueChange) withNext(next Action) *TechniqueChange {
	c := *t
	c.next = next
	return &c
}

// merge overlays o onto t field by field; fields left unset in o keep
// the value from t. The result carries no continuation.
func (t *TechniqueChange) merge(o *TechniqueChange) *TechniqueChange {
	var merged TechniqueChange
	if t != nil {
		merged = *t
	}
	if o.goal != nil {
		merged.goal = o.goal
	}
	if o.technique != nil {
		merged.technique = o.technique
	}
	if o.hasLimit {
		merged.limit = o.limit
		merged.hasLimit = true
	}
	merged.next = nil
	return &merged
}

// drain runs act the way node activation does: technique changes are
// merged and their continuations followed, and draining stops at the
// first choice point, whose alternatives are returned.
func drain(act Action) ([]Action, *TechniqueChange, error) {
	var change *TechniqueChange
	for act != nil {
		var err error
		switch a := act.(type) {
		case *Choice:
			return a.alternatives, change, nil
		case *TechniqueChange:
			change = change.merge(a)
			act = a.next
		case *Combined:
			act, err = a.Perform()
		case Step:
			act, err = a.Perform()
		default:
			panic(fmt.Sprintf("unknown action type %T", act))
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return nil, change, nil
}
