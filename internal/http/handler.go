package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/httputil"
	"github.com/davidbz/chatrelay/internal/observability"
)

const maxRequestBytes = 10 << 20

// Handler handles HTTP requests.
type Handler struct {
	gateway *domain.GatewayService
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(gateway *domain.GatewayService) *Handler {
	return &Handler{
		gateway: gateway,
	}
}

// HandleModels serves the filtered model catalog.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.gateway.ListModels(ctx)
	if err != nil {
		httputil.WriteError(ctx, w, err)
		return
	}

	observability.FromContext(ctx).Info("models listed", observability.Int("count", len(list.Data)))

	if err := httputil.WriteJSON(w, http.StatusOK, list); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}

// HandleChatCompletions processes chat completion requests in either
// aggregated or streaming mode.
func (h *Handler) HandleChatCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.ChatRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		httputil.WriteError(ctx, w, decodeError(err))
		return
	}
	// Reaching EOF lets the server notice a client disconnect mid-stream.
	_, _ = io.Copy(io.Discard, body)

	logger := observability.FromContext(ctx)
	logger.Info("chat completion request received",
		observability.String("model", req.Model),
		observability.Int("messages", len(req.Messages)),
		observability.Bool("stream", req.Stream),
	)

	if req.Stream {
		h.handleStream(ctx, w, &req)
		return
	}

	completion, err := h.gateway.Complete(ctx, &req)
	if err != nil {
		httputil.WriteError(ctx, w, err)
		return
	}

	logger.Info("chat completion succeeded", observability.String("id", completion.ID))

	if err := httputil.WriteJSON(w, http.StatusOK, completion); err != nil {
		logger.Error("failed to encode response", observability.Error(err))
	}
}

func (h *Handler) handleStream(
	ctx context.Context,
	w http.ResponseWriter,
	req *domain.ChatRequest,
) {
	logger := observability.FromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(ctx, w, domain.NewServerError("streaming not supported", nil))
		return
	}

	chunks, err := h.gateway.Stream(ctx, req)
	if err != nil {
		httputil.WriteError(ctx, w, err)
		return
	}

	httputil.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	observability.StreamingConnections.Inc()
	defer observability.StreamingConnections.Dec()

	logger.Info("stream request started")

	// Returning cancels the request context, which stops the gateway and
	// the vendor reader behind it.
	sent := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("client disconnected", observability.Int("chunks", sent))
			return

		case chunk, open := <-chunks:
			if !open {
				if err := httputil.WriteDone(w); err != nil {
					logger.Warn("failed to write sentinel", observability.Error(err))
					return
				}
				flusher.Flush()
				logger.Info("stream completed", observability.Int("chunks", sent))
				return
			}

			if chunk.Error != nil {
				logger.Error("stream aborted", observability.Error(chunk.Error), observability.Int("chunks", sent))
				return
			}

			if err := httputil.WriteEvent(w, chunk.Chunk); err != nil {
				logger.Warn("stream write failed", observability.Error(err))
				return
			}
			flusher.Flush()
			sent++
		}
	}
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	}); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(r.Context()).Warn("failed to encode health response", observability.Error(err))
	}
}

// HandleNotFound answers every unrouted path.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(r.Context(), w,
		domain.NewNotFoundError(fmt.Sprintf("Unknown request URL: %s %s", r.Method, r.URL.Path)))
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.NewInvalidRequestError("request body is too large")
	}
	if errors.Is(err, io.EOF) {
		return domain.NewInvalidRequestError("request body is required")
	}
	return domain.NewInvalidRequestError(fmt.Sprintf("invalid request body: %v", err))
}
