package handler

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

// Format compiles non-executable handler files into Callables.
type Format interface {
	// Name identifies the format in logs and listings.
	Name() string

	// Marker matches content that this format claims.
	Marker() *regexp.Regexp

	// Compile parses content and calls register with the handler's Callable.
	// register is only valid for the duration of the call; a file must
	// register exactly once to be loaded.
	Compile(ctx context.Context, path string, content []byte, register func(Callable)) error
}

// FormatRegistry holds the formats offered each internal handler file, in
// registration order.
type FormatRegistry struct {
	mu      sync.RWMutex
	formats []Format
	byName  map[string]Format
}

// NewFormatRegistry creates a format registry holding formats.
func NewFormatRegistry(formats ...Format) (*FormatRegistry, error) {
	r := &FormatRegistry{byName: make(map[string]Format)}
	for _, f := range formats {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a format.
func (r *FormatRegistry) Register(f Format) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[f.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFormat, f.Name())
	}
	r.byName[f.Name()] = f
	r.formats = append(r.formats, f)
	return nil
}

// Match returns the first format whose marker matches content.
func (r *FormatRegistry) Match(content []byte) (Format, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.formats {
		if f.Marker().Match(content) {
			return f, true
		}
	}
	return nil, false
}

// Names returns the registered format names in order.
func (r *FormatRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name()
	}
	return names
}
