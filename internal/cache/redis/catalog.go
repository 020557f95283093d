// Package redis stores the model catalog in Redis so several relay
// instances share one fetch per TTL window.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/observability"
)

// Config contains Redis connection settings. An empty Addr disables Redis.
type Config struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"         envDefault:"0"`
	Key      string `env:"REDIS_CATALOG_KEY" envDefault:"chatrelay:catalog"`
}

// CatalogCache implements domain.CatalogCache on a Redis string key.
type CatalogCache struct {
	client *redis.Client
	key    string
}

// NewClient opens a client for cfg.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewCatalogCache creates a Redis-backed catalog cache.
func NewCatalogCache(client *redis.Client, key string) *CatalogCache {
	return &CatalogCache{
		client: client,
		key:    key,
	}
}

// Get returns the cached models or domain.ErrCacheMiss.
func (c *CatalogCache) Get(ctx context.Context) ([]domain.CatalogModel, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var models []domain.CatalogModel
	if unmarshalErr := json.Unmarshal(data, &models); unmarshalErr != nil {
		observability.FromContext(ctx).Warn("dropping undecodable cached catalog",
			observability.String("key", c.key),
			observability.Error(unmarshalErr))
		return nil, domain.ErrCacheMiss
	}

	return models, nil
}

// Set stores models with the given expiry.
func (c *CatalogCache) Set(ctx context.Context, models []domain.CatalogModel, ttl time.Duration) error {
	data, err := json.Marshal(models)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if setErr := c.client.Set(ctx, c.key, data, ttl).Err(); setErr != nil {
		return fmt.Errorf("redis set %s: %w", c.key, setErr)
	}

	observability.FromContext(ctx).Debug("catalog cached in redis",
		observability.String("key", c.key),
		observability.Int("models", len(models)),
		observability.Duration("ttl", ttl))

	return nil
}
