// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"seller-onboarding/internal/config"
	aiAdapters "seller-onboarding/internal/infra/adapters/ai"
	pg "seller-onboarding/internal/infra/db/postgres"
	"seller-onboarding/internal/infra/logging"
	"seller-onboarding/internal/infra/metrics"
	red "seller-onboarding/internal/infra/redis"
	"seller-onboarding/internal/infra/web"
	"seller-onboarding/internal/infra/worker"
	"seller-onboarding/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	ensureSchema := flag.Bool("ensure-schema", false, "create the sellers table if missing, then continue")
	flag.Parse()

	// A missing completion credential fails here, before any traffic:
	// per-turn fallback covers runtime unavailability, not a process
	// that was never configured.
	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if *ensureSchema {
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("schema")
		}
	}

	// ---- Redis (optional, rate limiting only) ----
	var limiter *red.RateLimiter
	var cache web.Pinger
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		cache = redisClient
	} else {
		logger.Warn().Msg("redis.url not set; turn rate limiting disabled")
	}

	// ---- Background retry workers ----
	workers := worker.NewPool(cfg.Worker.Count, logger)
	workers.Start(ctx)
	defer workers.Stop()

	// ---- Wiring ----
	sellerRepo := pg.NewPostgresSellerRepo(pool)
	completion, err := aiAdapters.NewStreamingClient(cfg.Completion, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("completion adapter")
	}
	onboardingUC := usecase.NewOnboardingUseCase(sellerRepo, workers, logger)

	srv := web.NewServer(
		onboardingUC,
		completion,
		sellerRepo,
		limiter,
		cfg.Redis.TurnsPerMinute,
		pool,
		cache,
		cfg.Admin.APIKey,
		logger,
	)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("model", cfg.Completion.Model).Msg("onboarding engine listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
