package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/propdesk/propdesk/config"
	"github.com/propdesk/propdesk/internal/api"
	"github.com/propdesk/propdesk/internal/core/gallery"
	"github.com/propdesk/propdesk/internal/core/listing"
	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/session"
	"github.com/propdesk/propdesk/internal/core/validation"
	"github.com/propdesk/propdesk/internal/core/workspace"
	"github.com/propdesk/propdesk/internal/logging"
	"github.com/propdesk/propdesk/internal/remote"
	"github.com/propdesk/propdesk/internal/storage/postgres"
	"github.com/propdesk/propdesk/internal/storage/redis"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, closeLogger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogger()

	// Validate critical configuration
	if cfg.Session.Secret == "" {
		logger.Error("SESSION_SECRET environment variable is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ttl := cfg.Session.ExpirationDuration()
	store, closeStore, err := newSessionStore(ctx, cfg, ttl, logger)
	if err != nil {
		logger.Error("failed to open session store", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Initialize services
	client := remote.NewClient(cfg.API, logger)
	properties := property.NewService(client, validation.NewValidator(), logger, cfg.API.CacheTTL)
	sessions := session.NewService(store, client, session.NewTokens(cfg.Session.Secret, ttl), logger)

	fetcher := listing.FetcherFunc(func(ctx context.Context, q listing.FilterQuery) (*property.Page, error) {
		return properties.List(ctx, q.Values())
	})
	registry := workspace.NewRegistry(fetcher, gallery.NewMemoryPreviews(), logger, ttl)
	defer registry.Close()
	properties.OnChange(func(string) { registry.InvalidateListings() })
	go registry.Run(ctx, time.Minute)

	// Setup router
	router := api.NewRouter(cfg, logger, sessions, properties, registry)
	engine := router.Setup(cfg.Server)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Server.Port, "api", cfg.API.BaseURL, "session_backend", cfg.Session.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, ttl time.Duration, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendPostgres:
		db, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)
		return session.NewPostgresStore(db, ttl), func() { db.Close() }, nil

	case config.SessionBackendRedis:
		rdb, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to redis")
		return session.NewRedisStore(rdb, ttl), func() { rdb.Close() }, nil

	default:
		return session.NewMemoryStore(ttl), func() {}, nil
	}
}
