package event

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chook-lab/chook/internal/schema"
)

// TypeSpec binds an event-type name to the schema of the subject it carries.
type TypeSpec struct {
	Name        string
	SubjectKind string
	Schema      *schema.Schema
}

// Registry maps event-type names to their TypeSpec. Built once, read-only thereafter.
type Registry struct {
	specs map[string]TypeSpec
	names []string
}

// NewRegistry builds the event type registry from a name → subject-kind table.
// An unknown subject kind is a configuration bug and fails construction.
func NewRegistry(subjects *schema.Registry, table map[string]string) (*Registry, error) {
	r := &Registry{
		specs: make(map[string]TypeSpec, len(table)),
		names: make([]string, 0, len(table)),
	}
	folded := make(map[string]string, len(table))

	for name, kind := range table {
		if name == "" {
			return nil, fmt.Errorf("event type name cannot be empty")
		}
		if prev, clash := folded[strings.ToLower(name)]; clash {
			return nil, fmt.Errorf("event types %q and %q differ only by case", prev, name)
		}
		s, err := subjects.Lookup(kind)
		if err != nil {
			return nil, fmt.Errorf("event type %s: %w", name, err)
		}
		folded[strings.ToLower(name)] = name
		r.specs[name] = TypeSpec{Name: name, SubjectKind: kind, Schema: s}
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	return r, nil
}

// NewDefaultRegistry builds the registry for every event type of the source protocol.
func NewDefaultRegistry(subjects *schema.Registry) (*Registry, error) {
	return NewRegistry(subjects, Types)
}

// Lookup returns the TypeSpec for an event-type name.
func (r *Registry) Lookup(name string) (TypeSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return TypeSpec{}, &DecodeError{Kind: ErrUnknownEventType, EventType: name}
	}
	return spec, nil
}

// Names returns every known event-type name, sorted.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}
