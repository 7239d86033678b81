package handler

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// leakyFormat keeps the register callback and calls it after Compile returns.
type leakyFormat struct {
	register func(Callable)
}

func (f *leakyFormat) Name() string            { return "leaky" }
func (f *leakyFormat) Marker() *regexp.Regexp { return regexp.MustCompile(`.`) }

func (f *leakyFormat) Compile(_ context.Context, _ string, _ []byte, register func(Callable)) error {
	f.register = register
	register(func(context.Context, Input) error { return nil })
	return nil
}

func TestCompile_RegisterIsScopedToCall(t *testing.T) {
	f := &leakyFormat{}
	call, err := compile(context.Background(), f, "h", []byte("x"))
	require.NoError(t, err)
	require.NotNil(t, call)

	// A late registration goes nowhere and does not panic.
	require.NotPanics(t, func() {
		f.register(func(context.Context, Input) error { return nil })
	})

	// A second load gets its own callback.
	call, err = compile(context.Background(), f, "h", []byte("x"))
	require.NoError(t, err)
	require.NotNil(t, call)
}

func TestCompile_NilCallable(t *testing.T) {
	f := &nilFormat{}
	_, err := compile(context.Background(), f, "h", nil)
	require.EqualError(t, err, "file registered a nil handler")
}

type nilFormat struct{}

func (nilFormat) Name() string            { return "nil" }
func (nilFormat) Marker() *regexp.Regexp { return regexp.MustCompile(`.`) }
func (nilFormat) Compile(_ context.Context, _ string, _ []byte, register func(Callable)) error {
	register(nil)
	return nil
}
