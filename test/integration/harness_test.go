//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chook-lab/chook/internal/dispatch"
	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/handler"
	"github.com/chook-lab/chook/internal/handler/formats/builtin"
	"github.com/chook-lab/chook/internal/handler/formats/script"
	"github.com/chook-lab/chook/internal/schema"
	"github.com/chook-lab/chook/internal/server"
	"github.com/chook-lab/chook/internal/webhook"
	"github.com/stretchr/testify/require"
)

type integrationHarness struct {
	baseURL    string
	client     *http.Client
	dir        string
	registry   *handler.Registry
	engine     *dispatch.Engine
	spawner    *dispatch.ExecSpawner
	cancel     context.CancelFunc
	serverDone chan error
	watchDone  chan error
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}
	if h.watchDone != nil {
		select {
		case <-h.watchDone:
		case <-time.After(5 * time.Second):
			t.Log("watcher shutdown timed out")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.engine.Shutdown(ctx))
	require.NoError(t, h.spawner.Wait(ctx))
}

// startHarness serves a handler tree populated by setup.
func startHarness(t *testing.T, watch bool, setup func(dir string)) *integrationHarness {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, handler.DefaultNamedSubdir), 0o755))
	setup(dir)

	subjects, err := schema.NewDefaultRegistry()
	require.NoError(t, err)
	types, err := event.NewDefaultRegistry(subjects)
	require.NoError(t, err)

	formats, err := handler.NewFormatRegistry(script.NewCompiler(nil), builtin.New(builtin.Defaults()))
	require.NoError(t, err)

	registry := handler.NewRegistry(handler.Options{
		Dir:          dir,
		IgnorePrefix: handler.DefaultIgnorePrefix,
		Formats:      formats,
		EventTypes:   types.Names(),
	})
	_, err = registry.Reload(context.Background())
	require.NoError(t, err)

	spawner := dispatch.NewExecSpawner(4, 10*time.Second, nil)
	engine := dispatch.New(registry, spawner, dispatch.WithInternalTimeout(5*time.Second))
	svc := webhook.NewService(event.NewDecoder(types), engine, registry, 1)

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	httpServer := server.New(addr, registry, "release")
	svc.RegisterRoutes(httpServer.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- httpServer.Run(ctx) }()

	var watchDone chan error
	if watch {
		watchDone = make(chan error, 1)
		go func() { watchDone <- registry.Watch(ctx, 50*time.Millisecond) }()
	}

	baseURL := "http://" + addr
	waitForHealthy(t, baseURL)

	return &integrationHarness{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		dir:        dir,
		registry:   registry,
		engine:     engine,
		spawner:    spawner,
		cancel:     cancel,
		serverDone: serverDone,
		watchDone:  watchDone,
	}
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func post(t *testing.T, client *http.Client, endpoint string, body []byte) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func writeHandler(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
