package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/audit"
	"github.com/chunwon/market/services/recommendation-service/internal/config"
	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/chunwon/market/services/recommendation-service/internal/infrastructure/catalog"
	"github.com/chunwon/market/services/recommendation-service/internal/infrastructure/memory"
	"github.com/chunwon/market/services/recommendation-service/internal/infrastructure/postgres"
	"github.com/chunwon/market/services/recommendation-service/internal/infrastructure/rabbitmq"
	rediscache "github.com/chunwon/market/services/recommendation-service/internal/infrastructure/redis"
	"github.com/chunwon/market/services/recommendation-service/internal/pkg/logger"
	"github.com/chunwon/market/services/recommendation-service/internal/service"
	"github.com/chunwon/market/services/recommendation-service/internal/transport/rest"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}

	logger.Init()
	log := logger.Logger.With().
		Str("service", "recommendation-service").
		Str("env", cfg.AppEnv).
		Logger()

	// Root ctx with signal cancellation
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Interaction store ----
	var store domain.InteractionRepository
	switch cfg.StoreDriver {
	case "memory":
		store = memory.New()
		log.Info().Msg("using in-memory interaction store")
	default:
		dbPool, err := pgxpool.New(rootCtx, cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres pool create failed")
		}
		defer dbPool.Close()

		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		defer cancel()
		if err := dbPool.Ping(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("postgres ping failed")
		}

		repo := postgres.New(dbPool)
		if err := repo.EnsureSchema(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("interaction schema setup failed")
		}
		store = repo
		log.Info().Msg("postgres connected")
	}

	// ---- Redis recommendation cache ----
	cache := rediscache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheFreshTTL, cfg.CacheEvictTTL)
	{
		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		defer cancel()

		// Best-effort ping; the service degrades to compute-always without redis.
		if err := cache.Client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed (continuing)")
		} else {
			log.Info().Msg("redis connected")
		}
	}

	// ---- Product catalog ----
	var products domain.ProductCatalog
	if cfg.CatalogURL != "" {
		products = catalog.NewClient(cfg.CatalogURL, &http.Client{Timeout: cfg.CatalogTimeout})
		log.Info().Str("catalog_url", cfg.CatalogURL).Msg("using external catalog")
	} else {
		products = catalog.NewSeeded()
		log.Info().Msg("using embedded seed catalog")
	}

	// ---- Application service ----
	svc := service.New(store, cache, products, service.Options{
		HistorySampleLimit: cfg.HistorySampleLimit,
		DecayHalfLife:      cfg.DecayHalfLife,
		CoOccurrenceWindow: cfg.CoOccurrenceWindow,
		RequestDeadline:    cfg.RequestDeadline,
	}).WithAudit(audit.New(log))

	// ---- Interaction event fan-out ----
	if cfg.EventsEnabled {
		pub := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		pub.Start(rootCtx)
		svc.WithEvents(pub)
		log.Info().Str("exchange", cfg.RabbitExchange).Msg("interaction event publisher started")
	}

	h := rest.NewHandler(svc, products)

	// ---- Router ----
	httpHandler := rest.NewRouter(rest.RouterDeps{
		Cache:            cache,
		Handler:          h,
		RateLimitEnabled: cfg.RLEnabled,
		RateLimit:        cfg.RLLimit,
		RateLimitWindow:  cfg.RLWindow,
	})

	// ---- HTTP server ----
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
