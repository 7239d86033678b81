package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	httperr "github.com/chook-lab/chook/internal/core/errors"
	"github.com/chook-lab/chook/internal/dispatch"
	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/handler"
	"github.com/chook-lab/chook/internal/handler/formats/builtin"
	"github.com/chook-lab/chook/internal/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const computerAdded = `{"webhook":{"id":1,"name":"Enroll","webhookEvent":"ComputerAdded"},"event":{"udid":"U-1","deviceName":"lab-01"}}`

type testEnv struct {
	router   *gin.Engine
	registry *handler.Registry
	engine   *dispatch.Engine
	dir      string
	calls    atomic.Int32
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{dir: t.TempDir()}

	subjects, err := schema.NewDefaultRegistry()
	require.NoError(t, err)
	types, err := event.NewDefaultRegistry(subjects)
	require.NoError(t, err)

	formats, err := handler.NewFormatRegistry(builtin.New(map[string]handler.Callable{
		"count": func(context.Context, handler.Input) error {
			env.calls.Add(1)
			return nil
		},
	}))
	require.NoError(t, err)

	env.registry = handler.NewRegistry(handler.Options{
		Dir:          env.dir,
		IgnorePrefix: handler.DefaultIgnorePrefix,
		Formats:      formats,
		EventTypes:   types.Names(),
	})
	env.write(t, "ComputerAdded.count", "# chook:builtin count\n")
	env.write(t, filepath.Join(handler.DefaultNamedSubdir, "ping"), "# chook:builtin count\n")
	_, err = env.registry.Reload(context.Background())
	require.NoError(t, err)

	env.engine = dispatch.New(env.registry, nil)
	t.Cleanup(func() { _ = env.engine.Shutdown(context.Background()) })

	svc := NewService(event.NewDecoder(types), env.engine, env.registry, 1, opts...)
	env.router = gin.New()
	svc.RegisterRoutes(env.router)
	return env
}

func (e *testEnv) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(e.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func errorBody(t *testing.T, resp *httptest.ResponseRecorder) httperr.ErrorResponse {
	t.Helper()
	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	return errResp
}

func TestHandleEvent_Success(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/handle_webhook_event", []byte(computerAdded))
	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "accepted", result["status"])
	require.Equal(t, "ComputerAdded", result["event_type"])
	require.EqualValues(t, 1, result["handlers_invoked"])
	require.NotEmpty(t, result["event_id"])

	require.NoError(t, env.engine.Shutdown(context.Background()))
	require.EqualValues(t, 1, env.calls.Load())
}

func TestHandleEvent_NoHandlersIsAccepted(t *testing.T) {
	env := newTestEnv(t)

	body := `{"webhook":{"id":2,"name":"Boot","webhookEvent":"JSSStartup"},"event":{"hostAddress":"10.0.0.1"}}`
	resp := env.do(http.MethodPost, "/handle_webhook_event", []byte(body))
	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.EqualValues(t, 0, result["handlers_invoked"])
}

func TestHandleEvent_ClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantType  string
		wantEvent string
	}{
		{
			name:     "not json",
			body:     "not json",
			wantCode: http.StatusBadRequest,
			wantType: httperr.HttpMalformedPayloadError,
		},
		{
			name:     "empty body",
			body:     "",
			wantCode: http.StatusBadRequest,
			wantType: httperr.HttpMalformedPayloadError,
		},
		{
			name:     "missing webhook",
			body:     `{"event":{}}`,
			wantCode: http.StatusBadRequest,
			wantType: httperr.HttpMalformedPayloadError,
		},
		{
			name:      "unknown event type",
			body:      `{"webhook":{"id":1,"webhookEvent":"ToasterPopped"},"event":{}}`,
			wantCode:  http.StatusBadRequest,
			wantType:  httperr.HttpUnknownEventTypeError,
			wantEvent: "ToasterPopped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp := env.do(http.MethodPost, "/handle_webhook_event", []byte(tt.body))
			require.Equal(t, tt.wantCode, resp.Code)

			errResp := errorBody(t, resp)
			require.Equal(t, tt.wantType, errResp.ErrorType)
			if tt.wantEvent != "" {
				details, ok := errResp.Details.(map[string]interface{})
				require.True(t, ok)
				require.Equal(t, tt.wantEvent, details["event_type"])
			}
			require.Zero(t, env.calls.Load())
		})
	}
}

func TestHandleEvent_PayloadTooLarge(t *testing.T) {
	env := newTestEnv(t)

	big := strings.Repeat("x", 1024*1024+1)
	resp := env.do(http.MethodPost, "/handle_webhook_event", []byte(big))
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.Equal(t, httperr.HttpPayloadTooLargeError, errorBody(t, resp).ErrorType)
}

func TestHandleNamed(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/handler/ping", []byte("anything at all"))
	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "ping", result["handler"])
	require.EqualValues(t, 1, result["handlers_invoked"])

	require.NoError(t, env.engine.Shutdown(context.Background()))
	require.EqualValues(t, 1, env.calls.Load())
}

func TestHandleNamed_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/handler/nope", []byte("{}"))
	require.Equal(t, http.StatusNotFound, resp.Code)

	errResp := errorBody(t, resp)
	require.Equal(t, httperr.HttpHandlerNotFoundError, errResp.ErrorType)
	require.Contains(t, errResp.Message, "nope")
}

func TestIngestLog(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "valid", body: `{"level":"warn","message":"disk almost full"}`, wantCode: http.StatusOK},
		{name: "default level", body: `{"message":"hello"}`, wantCode: http.StatusOK},
		{name: "not json", body: `level=warn`, wantCode: http.StatusConflict},
		{name: "no message", body: `{"level":"info"}`, wantCode: http.StatusConflict},
		{name: "unknown level", body: `{"level":"loud","message":"x"}`, wantCode: http.StatusConflict},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/log", []byte(tt.body))
			require.Equal(t, tt.wantCode, resp.Code)
			if tt.wantCode != http.StatusOK {
				require.Equal(t, httperr.HttpInvalidLogEntryError, errorBody(t, resp).ErrorType)
			}
		})
	}
}

func TestListHandlers(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/handlers", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var result struct {
		Generation uint64               `json:"generation"`
		Handlers   []handler.ListingRow `json:"handlers"`
		Problems   []string             `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.EqualValues(t, 1, result.Generation)
	require.Len(t, result.Handlers, 2)
	require.Equal(t, "ComputerAdded", result.Handlers[0].Key)
	require.Equal(t, "ping", result.Handlers[1].Key)
	require.Empty(t, result.Problems)
}

func TestReloadHandlers(t *testing.T) {
	env := newTestEnv(t)

	env.write(t, "ComputerCheckIn.count", "# chook:builtin count\n")
	env.write(t, "ComputerPolicyFinished.count", "# chook:builtin missing\n")

	resp := env.do(http.MethodPost, "/handlers/reload", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.EqualValues(t, 2, result["generation"])
	require.EqualValues(t, 3, result["handlers"])
	require.Len(t, result["problems"], 1)

	require.EqualValues(t, 2, env.registry.Current().Generation())
}

func TestBasicAuth(t *testing.T) {
	env := newTestEnv(t, WithBasicAuth("jamf", "s3cret"))

	resp := env.do(http.MethodPost, "/handle_webhook_event", []byte(computerAdded))
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/handle_webhook_event", strings.NewReader(computerAdded))
	req.SetBasicAuth("jamf", "s3cret")
	ok := httptest.NewRecorder()
	env.router.ServeHTTP(ok, req)
	require.Equal(t, http.StatusAccepted, ok.Code)
}
