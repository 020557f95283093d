package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/chatrelay/internal/cache/redis"
	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/observability"
	"github.com/davidbz/chatrelay/internal/provider/upstream"
	"github.com/davidbz/chatrelay/internal/routing"
)

// Config represents the relay configuration.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Catalog  CatalogConfig
	Log      observability.Config
	Upstream upstream.Config
	Routing  routing.Config
	Gateway  domain.GatewayConfig
	Redis    redis.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     int `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int `env:"SERVER_WRITE_TIMEOUT"    envDefault:"300"`
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// AuthConfig contains the optional bearer key callers must present.
type AuthConfig struct {
	APIKey string `env:"API_KEY"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH"    envDefault:"/metrics"`
}

// CatalogConfig contains model catalog filtering and caching.
type CatalogConfig struct {
	Filter domain.CatalogFilter
	// CacheTTL is in seconds; 0 refetches the catalog on every request.
	CacheTTL int `env:"CATALOG_CACHE_TTL" envDefault:"0"`
}

// TTL returns the cache TTL as a duration.
func (c CatalogConfig) TTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	Server   *ServerConfig
	CORS     *CORSConfig
	Auth     *AuthConfig
	Metrics  *MetricsConfig
	Catalog  *CatalogConfig
	Log      *observability.Config
	Upstream *upstream.Config
	Routing  *routing.Config
	Gateway  *domain.GatewayConfig
	Redis    *redis.Config
}

// Load loads environment files and parses configuration.
func Load() (*Config, error) {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Out:      dig.Out{},
		Server:   &cfg.Server,
		CORS:     &cfg.CORS,
		Auth:     &cfg.Auth,
		Metrics:  &cfg.Metrics,
		Catalog:  &cfg.Catalog,
		Log:      &cfg.Log,
		Upstream: &cfg.Upstream,
		Routing:  &cfg.Routing,
		Gateway:  &cfg.Gateway,
		Redis:    &cfg.Redis,
	}
}
