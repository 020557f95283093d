// Package routing resolves public model ids to vendor models.
package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/observability"
)

// Resolution policies for model ids missing from the catalog.
const (
	PolicyStrict   = "strict"
	PolicyFallback = "fallback"
)

// FallbackEntry is returned for unknown model ids under the fallback policy.
//
//nolint:gochecknoglobals // immutable value
var FallbackEntry = domain.ModelEntry{
	PublicID:      string(openai.ChatModelGPT4oMini),
	Provider:      "openai",
	InternalModel: string(openai.ChatModelGPT4oMini),
}

// Config selects the resolution policy.
type Config struct {
	Policy string `env:"MODEL_RESOLUTION" envDefault:"strict"`
}

// ResolveProviderInfo returns the catalog entry for publicID, or FallbackEntry
// and false when the id is not in the catalog.
func ResolveProviderInfo(publicID string, catalog *domain.Catalog) (domain.ModelEntry, bool) {
	if entry, ok := catalog.Lookup(publicID); ok {
		return entry, true
	}
	return FallbackEntry, false
}

// CatalogRouter implements domain.Router over a resolved catalog.
type CatalogRouter struct {
	fallback bool
}

// NewRouter creates a router for the configured policy.
func NewRouter(cfg *Config) (*CatalogRouter, error) {
	policy := PolicyStrict
	if cfg != nil && cfg.Policy != "" {
		policy = cfg.Policy
	}

	switch policy {
	case PolicyStrict:
		return &CatalogRouter{fallback: false}, nil
	case PolicyFallback:
		return &CatalogRouter{fallback: true}, nil
	default:
		return nil, fmt.Errorf("unknown model resolution policy %q", policy)
	}
}

// Route resolves the requested model against the catalog.
func (r *CatalogRouter) Route(ctx context.Context, req *domain.RouteRequest) (domain.ModelEntry, error) {
	if req == nil {
		return domain.ModelEntry{}, errors.New("route request cannot be nil")
	}

	entry, found := ResolveProviderInfo(req.Model, req.Catalog)
	if found {
		return entry, nil
	}

	if !r.fallback {
		return domain.ModelEntry{}, domain.NewInvalidRequestError(fmt.Sprintf(
			"The model `%s` does not exist or is not available. Try `%s`.",
			req.Model, FallbackEntry.PublicID))
	}

	observability.FromContext(ctx).Warn("model not in catalog, using fallback",
		observability.String("requested_model", req.Model),
		observability.String("fallback_model", entry.InternalModel),
		observability.String("fallback_provider", entry.Provider))

	return entry, nil
}
