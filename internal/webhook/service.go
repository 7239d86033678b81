package webhook

import (
	"context"

	"github.com/chook-lab/chook/internal/dispatch"
	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/handler"
	"github.com/gin-gonic/gin"
)

// Decoder turns a request body into an Event.
type Decoder interface {
	Decode(raw []byte) (*event.Event, error)
}

// Dispatcher runs handlers for decoded events and named calls.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *event.Event) *dispatch.Result
	DispatchNamed(ctx context.Context, id string, raw []byte) (*dispatch.Result, error)
	Stats() dispatch.Stats
}

// Registry exposes the loaded handlers for listing and hot reload.
type Registry interface {
	Current() *handler.Snapshot
	Reload(ctx context.Context) (*handler.Snapshot, error)
}

type Service struct {
	decoder          Decoder
	dispatcher       Dispatcher
	registry         Registry
	maxBodySizeBytes int
	accounts         gin.Accounts
}

// Option configures a Service.
type Option func(*Service)

// WithBasicAuth protects every route with HTTP basic auth.
func WithBasicAuth(user, password string) Option {
	return func(s *Service) {
		if user != "" {
			s.accounts = gin.Accounts{user: password}
		}
	}
}

func NewService(dec Decoder, disp Dispatcher, reg Registry, maxBodySizeMB int, opts ...Option) *Service {
	if dec == nil {
		panic("webhook: decoder must not be nil")
	}
	if disp == nil {
		panic("webhook: dispatcher must not be nil")
	}
	if reg == nil {
		panic("webhook: registry must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	s := &Service{
		decoder:          dec,
		dispatcher:       disp,
		registry:         reg,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes registers the webhook, named handler, log and admin routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/")
	if len(s.accounts) > 0 {
		g.Use(gin.BasicAuth(s.accounts))
	}

	// Event source intake.
	g.POST("/handle_webhook_event", s.HandleEvent)
	g.POST("/handler/:name", s.HandleNamed)

	// Lets external handlers write into the server log.
	g.POST("/log", s.IngestLog)

	g.GET("/handlers", s.ListHandlers)
	g.POST("/handlers/reload", s.ReloadHandlers)
}
