package search

import (
	"errors"
	"fmt"
)

// ErrPropagationFailure is the only recoverable failure produced by
// this package. It means the branch currently being explored is
// infeasible; drivers recover by trying a sibling or ascending.
var ErrPropagationFailure = errors.New("propagation failure")

// Fail returns an error wrapping ErrPropagationFailure with a
// formatted reason.
func Fail(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPropagationFailure, fmt.Sprintf(format, args...))
}

// IsPropagationFailure reports whether err signals an infeasible
// branch.
func IsPropagationFailure(err error) bool {
	return errors.Is(err, ErrPropagationFailure)
}

// ContractViolation is the value panicked with when a component is
// driven outside of its contract: an illegal lifecycle transition, a
// jump requested from a strategy that cannot serve it, a stale node
// handle, or a reactivation that fails although it replays a branch
// that succeeded before. It is never returned as an error.
type ContractViolation struct {
	Op     string
	State  State
	Detail string
	Err    error
}

func (e ContractViolation) Error() string {
	msg := fmt.Sprintf("contract violation: %s", e.Op)
	if e.State != stateUnknown {
		msg = fmt.Sprintf("%s in state %s", msg, e.State)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e ContractViolation) Unwrap() error {
	return e.Err
}

func violation(op string, state State, format string, args ...interface{}) {
	panic(ContractViolation{Op: op, State: state, Detail: fmt.Sprintf(format, args...)})
}
