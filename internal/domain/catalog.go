package domain

import (
	"context"
	"errors"
	"time"

	"github.com/davidbz/chatrelay/internal/observability"
)

// ErrCacheMiss indicates no cached catalog was found.
var ErrCacheMiss = errors.New("cache miss")

// Catalog is the resolved mapping from public model id to vendor model.
// It preserves the vendor's ordering.
type Catalog struct {
	entries []ModelEntry
	byID    map[string]int
}

// NewCatalog builds a catalog; entries with an empty id are skipped and
// duplicates keep their first occurrence.
func NewCatalog(entries []ModelEntry) *Catalog {
	c := &Catalog{
		entries: make([]ModelEntry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if entry.PublicID == "" {
			continue
		}
		if _, exists := c.byID[entry.PublicID]; exists {
			continue
		}
		c.byID[entry.PublicID] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c
}

// Lookup returns the entry for a public model id.
func (c *Catalog) Lookup(publicID string) (ModelEntry, bool) {
	if c == nil {
		return ModelEntry{}, false
	}
	i, ok := c.byID[publicID]
	if !ok {
		return ModelEntry{}, false
	}
	return c.entries[i], true
}

// Models returns a copy of the entries in vendor order.
func (c *Catalog) Models() []ModelEntry {
	if c == nil {
		return nil
	}
	out := make([]ModelEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// FilterCatalog applies the filter gates to the raw vendor list.
func FilterCatalog(models []CatalogModel, filter CatalogFilter) *Catalog {
	entries := make([]ModelEntry, 0, len(models))
	for _, m := range models {
		if !filter.Allows(m) {
			continue
		}
		entries = append(entries, ModelEntry{
			PublicID:      m.ID,
			Provider:      m.Provider,
			InternalModel: m.Model,
		})
	}
	return NewCatalog(entries)
}

// CatalogResolver produces the filtered catalog, optionally through a TTL cache.
type CatalogResolver struct {
	source CatalogSource
	cache  CatalogCache
	filter CatalogFilter
	ttl    time.Duration
}

// NewCatalogResolver creates a resolver. A nil cache or a zero ttl disables caching.
func NewCatalogResolver(source CatalogSource, cache CatalogCache, filter CatalogFilter, ttl time.Duration) *CatalogResolver {
	return &CatalogResolver{
		source: source,
		cache:  cache,
		filter: filter,
		ttl:    ttl,
	}
}

// Resolve returns the filtered catalog. It never fails: fetch or parse errors
// are logged and yield an empty catalog.
func (r *CatalogResolver) Resolve(ctx context.Context) *Catalog {
	logger := observability.FromContext(ctx)

	if r.cachingEnabled() {
		models, err := r.cache.Get(ctx)
		switch {
		case err == nil:
			observability.CatalogResolutionsTotal.WithLabelValues("cache").Inc()
			return FilterCatalog(models, r.filter)
		case !errors.Is(err, ErrCacheMiss):
			logger.Warn("catalog cache get failed, fetching from upstream",
				observability.Error(err))
		}
	}

	models, err := r.source.FetchModels(ctx)
	if err != nil {
		observability.CatalogResolutionsTotal.WithLabelValues("error").Inc()
		logger.Error("failed to fetch model catalog", observability.Error(err))
		return NewCatalog(nil)
	}
	observability.CatalogResolutionsTotal.WithLabelValues("upstream").Inc()

	if r.cachingEnabled() && len(models) > 0 {
		if setErr := r.cache.Set(ctx, models, r.ttl); setErr != nil {
			logger.Warn("failed to store catalog in cache", observability.Error(setErr))
		}
	}

	catalog := FilterCatalog(models, r.filter)
	logger.Debug("model catalog resolved",
		observability.Int("fetched", len(models)),
		observability.Int("retained", catalog.Len()))

	return catalog
}

func (r *CatalogResolver) cachingEnabled() bool {
	return r.cache != nil && r.ttl > 0
}
