// Package builtin binds handler files to Go handlers compiled into the
// binary. A file opts in with a marker line naming the handler:
//
//	# chook:builtin log
package builtin

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/chook-lab/chook/internal/handler"
)

// Name is the format name shown in handler listings.
const Name = "builtin"

var marker = regexp.MustCompile(`(?m)^#\s*chook:builtin\s+(\S+)`)

// Format resolves marker names against a fixed set of Callables.
type Format struct {
	handlers map[string]handler.Callable
}

// New creates the builtin format over handlers, keyed by marker name.
func New(handlers map[string]handler.Callable) *Format {
	return &Format{handlers: maps.Clone(handlers)}
}

func (f *Format) Name() string { return Name }

func (f *Format) Marker() *regexp.Regexp { return marker }

// Compile registers the builtin named by the file's first marker line.
func (f *Format) Compile(_ context.Context, _ string, content []byte, register func(handler.Callable)) error {
	m := marker.FindSubmatch(content)
	if m == nil {
		return fmt.Errorf("missing chook:builtin marker")
	}
	name := string(m[1])
	call, ok := f.handlers[name]
	if !ok {
		return fmt.Errorf("unknown builtin %q (have %v)", name, f.Names())
	}
	register(call)
	return nil
}

// Names returns the available builtin names, sorted.
func (f *Format) Names() []string {
	return slices.Sorted(maps.Keys(f.handlers))
}
