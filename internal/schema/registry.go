package schema

import (
	"fmt"
	"slices"
)

// Registry holds one Schema per subject kind. It is populated once at startup;
// Register must not be called after the registry is shared between goroutines.
type Registry struct {
	schemas map[string]*Schema
	order   []string
}

// NewRegistry creates an empty subject schema registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// NewDefaultRegistry creates a registry holding every subject kind of the
// source protocol.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, def := range Subjects() {
		if err := r.Register(def.Kind, def.Fields...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds the schema for a subject kind.
func (r *Registry) Register(kind string, fields ...FieldSpec) error {
	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, kind)
	}
	s, err := newSchema(kind, fields)
	if err != nil {
		return err
	}
	r.schemas[kind] = s
	r.order = append(r.order, kind)
	return nil
}

// Lookup returns the schema for a subject kind.
func (r *Registry) Lookup(kind string) (*Schema, error) {
	s, ok := r.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubjectKind, kind)
	}
	return s, nil
}

// Kinds returns the registered subject kinds in registration order.
func (r *Registry) Kinds() []string {
	return slices.Clone(r.order)
}
