package domain

import (
	"context"
	"time"
)

// ChatBackend is the vendor chat API.
type ChatBackend interface {
	// CheckConfigured returns ErrUpstreamNotConfigured when the credential is missing.
	CheckConfigured() error

	// Chat sends the request and returns the vendor events in arrival order.
	// A non-success response is reported as *UpstreamStatusError before any event.
	// The channel closes after the first event carrying a finish reason,
	// after a terminal error event, or when the vendor stream ends.
	Chat(ctx context.Context, req *VendorChatRequest) (<-chan StreamEvent, error)
}

// CatalogSource fetches the raw vendor model list.
type CatalogSource interface {
	FetchModels(ctx context.Context) ([]CatalogModel, error)
}

// CatalogCache stores the raw vendor model list between requests.
type CatalogCache interface {
	// Get returns ErrCacheMiss when nothing fresh is stored.
	Get(ctx context.Context) ([]CatalogModel, error)

	// Set stores models for at most ttl.
	Set(ctx context.Context, models []CatalogModel, ttl time.Duration) error
}

// Router determines which vendor model serves a public model id.
type Router interface {
	// Route resolves the requested model against the catalog.
	Route(ctx context.Context, req *RouteRequest) (ModelEntry, error)
}

// RouteRequest contains criteria for model resolution.
type RouteRequest struct {
	Model   string
	Catalog *Catalog
}

// ModelCatalog resolves the filtered vendor catalog.
type ModelCatalog interface {
	// Resolve never fails; an unavailable vendor yields an empty catalog.
	Resolve(ctx context.Context) *Catalog
}
