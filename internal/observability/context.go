package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDBytes = 16 // W3C trace ID size in bytes
	spanIDBytes  = 8  // W3C span ID size in bytes
)

const (
	// TraceIDKey holds the trace ID, taken from an incoming traceparent when present.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey holds the span ID of this hop.
	SpanIDKey contextKey = "span_id"

	// RequestIDKey holds the unique request identifier.
	RequestIDKey contextKey = "request_id"

	// ProviderKey holds the vendor provider resolved for the requested model.
	ProviderKey contextKey = "provider"

	// ModelKey holds the public model id requested by the caller.
	ModelKey contextKey = "model"
)

// WithTraceID injects trace ID into context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithSpanID injects span ID into context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// WithRequestID injects request ID into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithProvider injects the resolved vendor provider into context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

// WithModel injects the requested public model id into context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string { return stringValue(ctx, TraceIDKey) }

// GetSpanID extracts span ID from context.
func GetSpanID(ctx context.Context) string { return stringValue(ctx, SpanIDKey) }

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string { return stringValue(ctx, RequestIDKey) }

// GetProvider extracts the vendor provider from context.
func GetProvider(ctx context.Context) string { return stringValue(ctx, ProviderKey) }

// GetModel extracts the public model id from context.
func GetModel(ctx context.Context) string { return stringValue(ctx, ModelKey) }

// GenerateTraceID generates a W3C-compatible trace ID (32 hex chars).
func GenerateTraceID() string {
	return randomHex(traceIDBytes)
}

// GenerateSpanID generates a W3C-compatible span ID (16 hex chars).
func GenerateSpanID() string {
	return randomHex(spanIDBytes)
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		id := uuid.New()
		return hex.EncodeToString(id[:])[:n*2]
	}
	return hex.EncodeToString(buf)
}

// TraceIDFromTraceparent returns the trace id of a W3C traceparent header
// ("00-<trace-id>-<parent-id>-<flags>"), or "" when the header is malformed.
func TraceIDFromTraceparent(header string) string {
	const (
		traceparentLen = 55
		traceIDStart   = 3
		traceIDEnd     = 35
	)
	if len(header) != traceparentLen || header[2] != '-' || header[traceIDEnd] != '-' {
		return ""
	}
	traceID := header[traceIDStart:traceIDEnd]
	if _, err := hex.DecodeString(traceID); err != nil || traceID == "00000000000000000000000000000000" {
		return ""
	}
	return traceID
}
