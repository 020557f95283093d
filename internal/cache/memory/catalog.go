// Package memory provides an in-process TTL cache for the model catalog.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/davidbz/chatrelay/internal/domain"
)

// CatalogCache implements domain.CatalogCache in memory.
type CatalogCache struct {
	mu        sync.RWMutex
	models    []domain.CatalogModel
	expiresAt time.Time
	now       func() time.Time
}

// NewCatalogCache creates an empty cache.
func NewCatalogCache() *CatalogCache {
	return &CatalogCache{now: time.Now}
}

// NewCatalogCacheWithClock creates a cache reading time from now.
func NewCatalogCacheWithClock(now func() time.Time) *CatalogCache {
	return &CatalogCache{now: now}
}

// Get returns the stored models while they are fresh.
func (c *CatalogCache) Get(_ context.Context) ([]domain.CatalogModel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || !c.now().Before(c.expiresAt) {
		return nil, domain.ErrCacheMiss
	}

	out := make([]domain.CatalogModel, len(c.models))
	copy(out, c.models)
	return out, nil
}

// Set stores models for ttl.
func (c *CatalogCache) Set(_ context.Context, models []domain.CatalogModel, ttl time.Duration) error {
	stored := make([]domain.CatalogModel, len(models))
	copy(stored, models)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.models = stored
	c.expiresAt = c.now().Add(ttl)
	return nil
}
