package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/app"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/auth"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/cache"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/config"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/handler"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/middleware"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/repository"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/router"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/service"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting inspections API",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize inspection repository based on config
	inspectionRepo, err := openRepository(ctx, cfg.InspectionDB)
	if err != nil {
		logger.Error("failed to initialize inspection storage", "type", cfg.InspectionDB.Type, "error", err)
		os.Exit(1)
	}
	defer inspectionRepo.Close()

	// Rate-limit counters: Redis when configured and reachable, memory otherwise
	var counter cache.Counter
	limiterBackend := "memory"
	if cfg.Cache.RedisEnabled {
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisCounterConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			defer redisClient.Close()
			counter = cache.NewRedisCounter(redisClient, cfg.Cache.KeyPrefix)
			limiterBackend = "redis"
		}
	}
	if counter == nil {
		memCounter := cache.NewMemoryCounter()
		defer memCounter.Close()
		counter = memCounter
	}

	// Initialize services
	ingestService := service.NewIngestService(inspectionRepo, service.IngestOptions{
		ChunkSize:     cfg.Ingest.ChunkSize,
		MaxSubmission: cfg.Ingest.MaxSubmission,
	}, logger)
	retrievalService := service.NewRetrievalService(inspectionRepo, cfg.Ingest.ListLimit, logger)

	// Initialize handlers
	healthHandler := handler.New(retrievalService, cfg.App.Name, cfg.App.Version)
	inspectionHandler := handler.NewInspectionHandler(ingestService, retrievalService, cfg.Ingest.MaxBodyBytes, logger)
	statsHandler := handler.NewStatsHandler(retrievalService, cfg.InspectionDB.Type, limiterBackend, logger)

	// Create middleware with injected dependencies
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Verifier: verifier,
		Logger:   logger,
	})
	globalLimit := middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
		Name:    "global",
		Counter: counter,
		Limit:   cfg.RateLimit.Global,
		Window:  cfg.RateLimit.Window,
		KeyFunc: middleware.ClientIPKey,
		Logger:  logger,
	})
	bulkLimit := middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
		Name:    "bulk",
		Counter: counter,
		Limit:   cfg.RateLimit.Bulk,
		Window:  cfg.RateLimit.Window,
		KeyFunc: middleware.OwnerKeyFunc,
		Logger:  logger,
	})

	// Create router
	r := router.New(router.Config{
		Handler:           healthHandler,
		InspectionHandler: inspectionHandler,
		StatsHandler:      statsHandler,
		Recovery:          middleware.NewRecovery(logger),
		Logging:           middleware.NewLogging(logger),
		AuthMiddleware:    authMiddleware,
		GlobalRateLimit:   globalLimit,
		BulkRateLimit:     bulkLimit,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		TrustProxy:        cfg.Server.TrustProxy,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// openRepository selects the storage backend named by cfg.Type.
func openRepository(ctx context.Context, cfg config.InspectionDBConfig) (repository.InspectionRepository, error) {
	switch strings.ToLower(cfg.Type) {
	case "postgres", "postgresql":
		return repository.NewPostgresInspectionRepository(ctx, cfg.PostgresDSN(), repository.PostgresOptions{
			MaxConns: int32(cfg.MaxConns),
			Timeout:  cfg.Timeout,
		})
	case "mysql":
		db, err := repository.OpenMySQL(ctx, cfg.MySQLDSN(), cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		repo, err := repository.NewMySQLInspectionRepository(ctx, db, cfg.Timeout)
		if err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil
	default: // sqlite
		return repository.NewSQLiteInspectionRepository(cfg.Path, cfg.Timeout)
	}
}
