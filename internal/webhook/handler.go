package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	httperr "github.com/chook-lab/chook/internal/core/errors"
	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/handler"
	"github.com/chook-lab/chook/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed  = "Failed to read request body"
	msgBodyTooLarge    = "Request body exceeds maximum allowed size"
	msgReloadFailed    = "Failed to reload handlers"
	msgInvalidLogEntry = "Log entry must be a JSON object with level and message"
)

// webhookError carries the structured HTTP error shape from a helper back to the route.
type webhookError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *webhookError) Error() string {
	return e.message
}

// HandleEvent decodes a webhook notification and dispatches it to the handlers
// bound to its event type. The response reports handlers launched, not finished.
func (s *Service) HandleEvent(c *gin.Context) {
	body, werr := s.readBody(c)
	if werr != nil {
		writeError(c, werr)
		return
	}

	ev, err := s.decoder.Decode(body)
	if err != nil {
		writeError(c, decodeError(err, len(body)))
		return
	}

	slog.Info("Received Event",
		"event_id", ev.ID(),
		"event_type", ev.Type(),
		"webhook_id", ev.WebhookID(),
		"webhook_name", ev.WebhookName(),
		"payload_size", len(body))

	res := s.dispatcher.Dispatch(c.Request.Context(), ev)

	c.JSON(http.StatusAccepted, gin.H{
		"status":           "accepted",
		"event_id":         ev.ID(),
		"event_type":       ev.Type(),
		"handlers_invoked": res.HandlersInvoked,
	})
}

// HandleNamed passes the raw request body to the named handler in the URL.
func (s *Service) HandleNamed(c *gin.Context) {
	body, werr := s.readBody(c)
	if werr != nil {
		writeError(c, werr)
		return
	}

	name := c.Param("name")
	res, err := s.dispatcher.DispatchNamed(c.Request.Context(), name, body)
	if err != nil {
		if errors.Is(err, handler.ErrHandlerNotFound) {
			slog.Warn("Named handler not found", "handler", name)
			writeError(c, &webhookError{
				statusCode: http.StatusNotFound,
				errorType:  httperr.HttpHandlerNotFoundError,
				message:    err.Error(),
				details:    map[string]interface{}{"handler": name},
			})
			return
		}
		slog.Error("Named dispatch failed", "handler", name, "error", err)
		writeError(c, &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":           "accepted",
		"event_id":         res.EventID,
		"handler":          name,
		"handlers_invoked": res.HandlersInvoked,
	})
}

// logEntry is the body of POST /log.
type logEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// IngestLog writes a line sent by an external handler into the server log.
func (s *Service) IngestLog(c *gin.Context) {
	body, werr := s.readBody(c)
	if werr != nil {
		writeError(c, werr)
		return
	}

	var entry logEntry
	if err := json.Unmarshal(body, &entry); err != nil || entry.Message == "" {
		writeError(c, &webhookError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpInvalidLogEntryError,
			message:    msgInvalidLogEntry,
		})
		return
	}
	level, err := logging.ParseLevel(entry.Level)
	if err != nil {
		writeError(c, &webhookError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpInvalidLogEntryError,
			message:    err.Error(),
		})
		return
	}

	slog.Log(c.Request.Context(), level, entry.Message, "source", "handler", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"status": "logged"})
}

// ListHandlers renders the current snapshot.
func (s *Service) ListHandlers(c *gin.Context) {
	snap := s.registry.Current()
	rows := snap.Listing()
	if rows == nil {
		rows = []handler.ListingRow{}
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot_id": snap.ID(),
		"generation":  snap.Generation(),
		"loaded_at":   snap.LoadedAt(),
		"dir":         snap.Dir(),
		"named_dir":   snap.NamedDir(),
		"handlers":    rows,
		"problems":    snap.ProblemMessages(),
		"dispatch":    s.dispatcher.Stats(),
	})
}

// ReloadHandlers re-runs discovery and swaps in the new snapshot.
func (s *Service) ReloadHandlers(c *gin.Context) {
	snap, err := s.registry.Reload(c.Request.Context())
	if err != nil {
		slog.Error("Handler reload failed", "error", err)
		writeError(c, &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReloadFailed,
		})
		return
	}

	slog.Info("Handlers reloaded", "generation", snap.Generation(), "handlers", snap.Len())
	c.JSON(http.StatusOK, gin.H{
		"status":     "reloaded",
		"generation": snap.Generation(),
		"handlers":   snap.Len(),
		"problems":   snap.ProblemMessages(),
	})
}

// readBody reads the request body up to the configured limit.
func (s *Service) readBody(c *gin.Context) ([]byte, *webhookError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBytes+1)) // +1 to detect oversized requests
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(body)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(body), "max", maxBytes)
		return nil, &webhookError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBodyTooLarge,
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}
	return body, nil
}

// decodeError maps decoder failures to client errors.
func decodeError(err error, size int) *webhookError {
	var de *event.DecodeError
	switch {
	case errors.Is(err, event.ErrUnknownEventType):
		details := map[string]interface{}{}
		if errors.As(err, &de) {
			details["event_type"] = de.EventType
		}
		slog.Warn("Unknown event type received", "error", err, "payload_size", size)
		return &webhookError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpUnknownEventTypeError,
			message:    err.Error(),
			details:    details,
		}
	case errors.Is(err, event.ErrMalformedPayload):
		slog.Warn("Malformed payload received", "error", err, "payload_size", size)
		return &webhookError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpMalformedPayloadError,
			message:    err.Error(),
		}
	default:
		slog.Error("Failed to decode payload", "error", err)
		return &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    err.Error(),
		}
	}
}

// writeError serializes a webhookError as the JSON HTTP response.
func writeError(c *gin.Context, err *webhookError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
