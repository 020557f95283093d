package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/chatrelay/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("should load config with defaults", func(t *testing.T) {
		// Clear environment
		os.Clearenv()

		cfg, err := config.Load()

		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify defaults
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 30, cfg.Server.ReadTimeout)
		require.Equal(t, 300, cfg.Server.WriteTimeout)
		require.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		require.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.CORS.AllowedMethods)
		require.Equal(t, []string{"Content-Type", "Authorization"}, cfg.CORS.AllowedHeaders)
		require.Equal(t, 86400, cfg.CORS.MaxAge)
		require.Empty(t, cfg.Auth.APIKey)
		require.Empty(t, cfg.Upstream.APIKey)
		require.Equal(t, 30, cfg.Upstream.Timeout)
		require.Equal(t, 16, cfg.Upstream.StreamBuffer)
		require.True(t, cfg.Catalog.Filter.ShowPremium)
		require.True(t, cfg.Catalog.Filter.IncludeDeprecated)
		require.Equal(t, time.Duration(0), cfg.Catalog.TTL())
		require.Equal(t, "strict", cfg.Routing.Policy)
		require.Equal(t, "gpt-4o-mini", cfg.Gateway.DefaultModel)
		require.Empty(t, cfg.Redis.Addr)
		require.Equal(t, "chatrelay:catalog", cfg.Redis.Key)
		require.Equal(t, "info", cfg.Log.Level)
		require.True(t, cfg.Metrics.Enabled)
	})

	t.Run("should load config from environment variables", func(t *testing.T) {
		// Set environment variables using t.Setenv for automatic cleanup
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("API_KEY", "sk-relay")
		t.Setenv("UPSTREAM_API_KEY", "vendor-secret")
		t.Setenv("UPSTREAM_CHAT_URL", "https://vendor.test/api/chat")
		t.Setenv("UPSTREAM_HOST", "vendor.test")
		t.Setenv("CATALOG_SHOW_PREMIUM", "false")
		t.Setenv("CATALOG_INCLUDE_DEPRECATED", "false")
		t.Setenv("CATALOG_CACHE_TTL", "120")
		t.Setenv("MODEL_RESOLUTION", "fallback")
		t.Setenv("DEFAULT_MODEL", "claude-3-5-sonnet")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := config.Load()

		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify loaded values
		require.Equal(t, 9000, cfg.Server.Port)
		require.Equal(t, "sk-relay", cfg.Auth.APIKey)
		require.Equal(t, "vendor-secret", cfg.Upstream.APIKey)
		require.Equal(t, "https://vendor.test/api/chat", cfg.Upstream.ChatURL)
		require.Equal(t, "vendor.test", cfg.Upstream.Host)
		require.False(t, cfg.Catalog.Filter.ShowPremium)
		require.False(t, cfg.Catalog.Filter.IncludeDeprecated)
		require.Equal(t, 2*time.Minute, cfg.Catalog.TTL())
		require.Equal(t, "fallback", cfg.Routing.Policy)
		require.Equal(t, "claude-3-5-sonnet", cfg.Gateway.DefaultModel)
		require.Equal(t, "localhost:6379", cfg.Redis.Addr)
		require.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("should fail on malformed values", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "not-a-port")

		cfg, err := config.Load()

		require.Error(t, err)
		require.Nil(t, cfg)
	})
}

func TestParseDependenciesConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upstream.APIKey = "vendor-secret"
	cfg.Catalog.CacheTTL = 5

	deps := config.ParseDependenciesConfig(cfg)

	require.Same(t, &cfg.Upstream, deps.Upstream)
	require.Same(t, &cfg.Catalog, deps.Catalog)
	require.Same(t, &cfg.Server, deps.Server)
}
