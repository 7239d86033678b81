package builtin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chook-lab/chook/internal/handler"
	"github.com/chook-lab/chook/internal/handler/formats/builtin"
	"github.com/stretchr/testify/require"
)

func TestFormat_Compile(t *testing.T) {
	sentinel := errors.New("called")
	f := builtin.New(map[string]handler.Callable{
		"notify": func(context.Context, handler.Input) error { return sentinel },
	})

	var got handler.Callable
	err := f.Compile(context.Background(), "ComputerAdded.notify", []byte("#!/ignored\n#  chook:builtin notify\n"), func(c handler.Callable) {
		got = c
	})
	require.NoError(t, err)
	require.ErrorIs(t, got(context.Background(), handler.Input{}), sentinel)
}

func TestFormat_UnknownBuiltin(t *testing.T) {
	f := builtin.New(builtin.Defaults())

	err := f.Compile(context.Background(), "x", []byte("# chook:builtin teleport\n"), func(handler.Callable) {
		t.Fatal("must not register")
	})
	require.ErrorContains(t, err, `unknown builtin "teleport"`)
	require.ErrorContains(t, err, "[log noop]")
}

func TestDefaults_HandleNamedAndGeneralInput(t *testing.T) {
	for name, call := range builtin.Defaults() {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, call(context.Background(), handler.Input{Payload: []byte(`{}`)}))
		})
	}
}
