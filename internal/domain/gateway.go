package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/chatrelay/internal/observability"
)

// GatewayConfig contains request defaults for the gateway.
type GatewayConfig struct {
	DefaultModel string `env:"DEFAULT_MODEL" envDefault:"gpt-4o-mini"`
	StreamBuffer int    `env:"STREAM_BUFFER" envDefault:"16"`
}

// GatewayService orchestrates catalog resolution, request translation and
// response assembly around the vendor backend.
type GatewayService struct {
	backend ChatBackend
	catalog ModelCatalog
	router  Router
	config  GatewayConfig
	now     func() time.Time
}

// NewGatewayService creates a new gateway service (DI constructor).
func NewGatewayService(backend ChatBackend, catalog ModelCatalog, router Router, cfg *GatewayConfig) *GatewayService {
	gatewayConfig := GatewayConfig{DefaultModel: "gpt-4o-mini", StreamBuffer: 16}
	if cfg != nil {
		gatewayConfig = *cfg
	}
	if gatewayConfig.StreamBuffer < 0 {
		gatewayConfig.StreamBuffer = 0
	}

	return &GatewayService{
		backend: backend,
		catalog: catalog,
		router:  router,
		config:  gatewayConfig,
		now:     time.Now,
	}
}

// ListModels returns the filtered catalog as an OpenAI model list.
func (g *GatewayService) ListModels(ctx context.Context) (*ModelList, error) {
	if err := g.checkBackend(); err != nil {
		return nil, err
	}

	catalog := g.catalog.Resolve(ctx)
	if catalog.Len() == 0 {
		return nil, NewServerError("no models available", nil)
	}

	return NewModelList(catalog, g.now()), nil
}

// Complete drains the vendor stream and returns one aggregated completion.
func (g *GatewayService) Complete(ctx context.Context, req *ChatRequest) (*ChatCompletion, error) {
	ctx, model, vendorReq, err := g.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)

	events, err := g.backend.Chat(ctx, vendorReq)
	if err != nil {
		return nil, upstreamFailure(err)
	}

	var content strings.Builder
	fragments := 0
	for ev := range events {
		if ev.Err != nil {
			logger.Error("upstream stream interrupted", observability.Error(ev.Err))
			return nil, NewBadGatewayError("upstream stream was interrupted", ev.Err)
		}
		if ev.Text != nil {
			content.WriteString(*ev.Text)
			fragments++
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("completion aborted: %w", ctxErr)
	}

	logger.Info("completion assembled",
		observability.Int("fragments", fragments),
		observability.Int("content_length", content.Len()))

	return NewResponseAssembler(model, g.now()).Completion(content.String()), nil
}

// Stream returns OpenAI chunks as vendor events arrive. The channel closes
// after the final marker chunk, when the vendor stream ends, or after an
// error chunk. Consumers write the terminal sentinel themselves.
func (g *GatewayService) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamChunk, error) {
	ctx, model, vendorReq, err := g.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	events, err := g.backend.Chat(ctx, vendorReq)
	if err != nil {
		return nil, upstreamFailure(err)
	}

	chunks := make(chan StreamChunk, g.config.StreamBuffer)
	go g.forward(ctx, events, chunks, NewResponseAssembler(model, g.now()))

	return chunks, nil
}

// forward converts vendor events into OpenAI chunks until a finish reason,
// the end of the vendor stream, an error, or cancellation.
func (g *GatewayService) forward(
	ctx context.Context,
	events <-chan StreamEvent,
	chunks chan<- StreamChunk,
	assembler *ResponseAssembler,
) {
	defer close(chunks)

	logger := observability.FromContext(ctx)
	defer logger.Debug("chunk forwarding finished")

	send := func(chunk StreamChunk) bool {
		select {
		case chunks <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("stream cancelled", observability.Error(ctx.Err()))
			return

		case ev, ok := <-events:
			if !ok {
				return
			}

			if ev.Err != nil {
				send(StreamChunk{Error: NewBadGatewayError("upstream stream was interrupted", ev.Err)})
				return
			}

			if ev.Text != nil && !send(StreamChunk{Chunk: assembler.Chunk(*ev.Text)}) {
				return
			}

			if ev.FinishReason != nil {
				send(StreamChunk{Chunk: assembler.FinishChunk(*ev.FinishReason)})
				return
			}
		}
	}
}

// prepare validates the request, resolves the model and builds the vendor body.
func (g *GatewayService) prepare(
	ctx context.Context,
	req *ChatRequest,
) (context.Context, string, *VendorChatRequest, error) {
	if req == nil {
		return ctx, "", nil, NewInvalidRequestError("request body is required")
	}

	if len(req.Messages) == 0 {
		return ctx, "", nil, NewInvalidRequestError("messages is required and must be a non-empty array")
	}

	if err := g.checkBackend(); err != nil {
		return ctx, "", nil, err
	}

	model := req.Model
	if model == "" {
		model = g.config.DefaultModel
	}
	ctx = observability.WithModel(ctx, model)

	catalog := g.catalog.Resolve(ctx)
	if catalog.Len() == 0 {
		return ctx, "", nil, NewServerError("no models available", nil)
	}

	entry, err := g.router.Route(ctx, &RouteRequest{Model: model, Catalog: catalog})
	if err != nil {
		return ctx, "", nil, fmt.Errorf("model resolution failed: %w", err)
	}
	ctx = observability.WithProvider(ctx, entry.Provider)

	translation := TranslateMessages(req.Messages)
	vendorReq := BuildVendorRequest(entry, translation, req.Temperature, uuid.NewString())

	observability.FromContext(ctx).Info("chat request translated",
		observability.String("internal_model", entry.InternalModel),
		observability.Int("messages", len(vendorReq.Messages)),
		observability.Bool("stream", req.Stream))

	return ctx, model, vendorReq, nil
}

func (g *GatewayService) checkBackend() error {
	if err := g.backend.CheckConfigured(); err != nil {
		return NewServerError("upstream credential is not configured", err)
	}
	return nil
}

// upstreamFailure hides vendor details behind a bad_gateway error.
func upstreamFailure(err error) error {
	var statusErr *UpstreamStatusError
	if errors.As(err, &statusErr) {
		return NewBadGatewayError(
			fmt.Sprintf("upstream chat service returned status %d", statusErr.StatusCode), err)
	}
	return NewBadGatewayError("upstream chat service is unreachable", err)
}
