// Package httputil holds response helpers shared by handlers and middleware.
package httputil

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/observability"
)

// ErrorBody is the OpenAI error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the caller-facing message. Code is always null.
type ErrorDetail struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Code    *string `json:"code"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError classifies err and writes the error envelope. Unclassified
// errors are reported as a generic server_error; the cause is only logged.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := domain.AsError(err)
	status := apiErr.StatusCode()

	logger := observability.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			observability.Int("status", status),
			observability.String("type", string(apiErr.Type)),
			observability.Error(err))
	} else {
		logger.Info("request rejected",
			observability.Int("status", status),
			observability.String("type", string(apiErr.Type)),
			observability.String("message", apiErr.Message))
	}

	if encodeErr := WriteJSON(w, status, ErrorBody{
		Error: ErrorDetail{
			Message: apiErr.Message,
			Type:    string(apiErr.Type),
			Code:    nil,
		},
	}); encodeErr != nil {
		logger.Warn("failed to encode error response", observability.Error(encodeErr))
	}
}
