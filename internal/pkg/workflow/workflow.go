// Package workflow holds explicit state transition tables for request workflows.
package workflow

import "fmt"

// Transitions maps a state to the states it may move to. States missing from
// the table are terminal.
type Transitions[S comparable] map[S][]S

// Allows reports whether from -> to is in the table.
func (t Transitions[S]) Allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (t Transitions[S]) IsTerminal(s S) bool {
	return len(t[s]) == 0
}

// TransitionError is returned when a transition is not in the table.
type TransitionError[S comparable] struct {
	From S
	To   S
	Err  error
}

func (e *TransitionError[S]) Error() string {
	return fmt.Sprintf("invalid transition %v -> %v: %v", e.From, e.To, e.Err)
}

func (e *TransitionError[S]) Unwrap() error {
	return e.Err
}

// Check returns nil when from -> to is allowed, otherwise a *TransitionError
// wrapping sentinel.
func (t Transitions[S]) Check(from, to S, sentinel error) error {
	if t.Allows(from, to) {
		return nil
	}
	return &TransitionError[S]{From: from, To: to, Err: sentinel}
}
