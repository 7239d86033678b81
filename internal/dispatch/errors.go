package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrTimedOut marks an internal handler that exceeded its budget.
	ErrTimedOut = errors.New("handler timed out")
	// ErrPanic marks an internal handler that panicked.
	ErrPanic = errors.New("handler panicked")
)

// InvocationError describes a failed handler invocation. It never leaves the
// engine except through Result outcomes and hooks.
type InvocationError struct {
	Identity string
	EventID  string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("handler %s (event %s): %v", e.Identity, e.EventID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
