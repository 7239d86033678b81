package errors

const (
	HttpInternalError         = "internal_error"
	HttpMalformedPayloadError = "malformed_payload"
	HttpUnknownEventTypeError = "unknown_event_type"
	HttpHandlerNotFoundError  = "handler_not_found"
	HttpPayloadTooLargeError  = "payload_too_large"
	HttpInvalidLogEntryError  = "invalid_log_entry"
)

// ErrorResponse is the error response body for every route.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
