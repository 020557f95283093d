package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/chatrelay/internal/cache/memory"
	"github.com/davidbz/chatrelay/internal/cache/redis"
	"github.com/davidbz/chatrelay/internal/config"
	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/http"
	"github.com/davidbz/chatrelay/internal/http/middleware"
	"github.com/davidbz/chatrelay/internal/observability"
	"github.com/davidbz/chatrelay/internal/provider/upstream"
	"github.com/davidbz/chatrelay/internal/routing"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server, serverCfg *config.ServerConfig, logger *zap.Logger) error {
		defer func() { _ = logger.Sync() }()
		return run(server, serverCfg)
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func run(server *http.Server, serverCfg *config.ServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(serverCfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Vendor client, serving both chat and the raw catalog.
	if err := container.Provide(func(cfg *upstream.Config) *upstream.Client {
		return upstream.NewClient(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide upstream client: %v", err)
	}
	if err := container.Provide(func(client *upstream.Client) domain.ChatBackend {
		return client
	}); err != nil {
		log.Fatalf("Failed to provide chat backend: %v", err)
	}
	if err := container.Provide(func(client *upstream.Client) domain.CatalogSource {
		return client
	}); err != nil {
		log.Fatalf("Failed to provide catalog source: %v", err)
	}

	// Catalog cache and resolver
	if err := container.Provide(provideCatalogCache); err != nil {
		log.Fatalf("Failed to provide catalog cache: %v", err)
	}
	if err := container.Provide(func(
		source domain.CatalogSource,
		cache domain.CatalogCache,
		cfg *config.CatalogConfig,
	) domain.ModelCatalog {
		return domain.NewCatalogResolver(source, cache, cfg.Filter, cfg.TTL())
	}); err != nil {
		log.Fatalf("Failed to provide catalog resolver: %v", err)
	}

	// Model resolution
	if err := container.Provide(func(cfg *routing.Config) (domain.Router, error) {
		return routing.NewRouter(cfg)
	}); err != nil {
		log.Fatalf("Failed to provide router: %v", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewGatewayService); err != nil {
		log.Fatalf("Failed to provide gateway service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// provideCatalogCache picks Redis when an address is configured and falls
// back to an in-process cache otherwise. The logger argument orders it after
// logger initialization.
func provideCatalogCache(cfg *redis.Config, _ *zap.Logger) domain.CatalogCache {
	ctx := context.Background()
	logger := observability.FromContext(ctx)

	if cfg.Addr == "" {
		logger.Info("using in-memory catalog cache")
		return memory.NewCatalogCache()
	}

	client := redis.NewClient(*cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis catalog cache is unreachable, entries will be refetched",
			observability.String("addr", cfg.Addr), observability.Error(err))
	}

	logger.Info("using redis catalog cache", observability.String("addr", cfg.Addr))
	return redis.NewCatalogCache(client, cfg.Key)
}
