package service

import (
	"fmt"
	"slices"
)

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
// Statuses missing from the map are terminal.
var allowedTransitions = map[Status][]Status{
	StatusIncoming:       {StatusPreparing, StatusCancelled},
	StatusPending:        {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup},
	StatusReadyForPickup: {StatusCompleted},
	StatusScheduled:      {StatusPreparing},
}

// TransitionError reports a status change that is not in the transition table.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if len(allowedTransitions[e.From]) == 0 {
		return fmt.Sprintf("cannot transition from %s: status is terminal", e.From)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s Status) []Status {
	return slices.Clone(allowedTransitions[s])
}

// CanTransition reports whether current -> next is allowed.
func CanTransition(current, next Status) bool {
	return slices.Contains(allowedTransitions[current], next)
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !CanTransition(current, next) {
		return &TransitionError{From: current, To: next}
	}
	return nil
}
