package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the OpenAI error "type" reported to callers.
type ErrorType string

// Error types exposed on the OpenAI surface.
const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	ErrorTypeAuthentication ErrorType = "authentication_error"
	ErrorTypeBadGateway     ErrorType = "bad_gateway"
	ErrorTypeServer         ErrorType = "server_error"
	ErrorTypeNotFound       ErrorType = "not_found"
)

// Error is a caller-facing failure. Message is safe to return; Err is only logged.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeBadGateway:
		return http.StatusBadGateway
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeServer:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewInvalidRequestError returns a 400 error.
func NewInvalidRequestError(message string) *Error {
	return &Error{Type: ErrorTypeInvalidRequest, Message: message}
}

// NewAuthenticationError returns a 401 error.
func NewAuthenticationError(message string) *Error {
	return &Error{Type: ErrorTypeAuthentication, Message: message}
}

// NewBadGatewayError returns a 502 error wrapping the upstream cause.
func NewBadGatewayError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeBadGateway, Message: message, Err: cause}
}

// NewServerError returns a 500 error wrapping the internal cause.
func NewServerError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeServer, Message: message, Err: cause}
}

// NewNotFoundError returns a 404 error.
func NewNotFoundError(message string) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: message}
}

// AsError classifies any error. Unknown errors become a generic server_error
// so internal details never reach the caller.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewServerError("internal server error", err)
}

// UpstreamStatusError reports a non-success vendor response. The body is never kept.
type UpstreamStatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.StatusCode)
}

// ErrUpstreamNotConfigured indicates the vendor credential is missing.
var ErrUpstreamNotConfigured = errors.New("upstream credential is not configured")
