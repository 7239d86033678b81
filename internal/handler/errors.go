package handler

import (
	"errors"
	"fmt"
)

var (
	// ErrHandlerNotFound is returned when a named handler does not exist in
	// the current snapshot.
	ErrHandlerNotFound = errors.New("handler not found")
	// ErrHandlerLoad marks a handler file that could not be loaded.
	ErrHandlerLoad = errors.New("handler load failed")
	// ErrRegistryUnavailable is reported when dispatch finds no completed load.
	ErrRegistryUnavailable = errors.New("handler registry unavailable")
	// ErrDuplicateFormat is returned when two formats share a name.
	ErrDuplicateFormat = errors.New("duplicate handler format")
)

// LoadError describes why one handler file was skipped.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrHandlerLoad, e.Err}
}
