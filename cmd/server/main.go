package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/config"
	"github.com/stemsi/evaluation-backend/internal/database"
	"github.com/stemsi/evaluation-backend/internal/event"
	"github.com/stemsi/evaluation-backend/internal/handler"
	"github.com/stemsi/evaluation-backend/internal/logger"
	"github.com/stemsi/evaluation-backend/internal/repository"
	"github.com/stemsi/evaluation-backend/internal/router"
	"github.com/stemsi/evaluation-backend/internal/service"
	"github.com/stemsi/evaluation-backend/internal/validator"
	"github.com/stemsi/evaluation-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("api_prefix", cfg.APIPrefix).
		Msg("Starting Evaluation Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Schema ────────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	var (
		publisher  event.Publisher = event.Nop{}
		subscriber handler.Subscriber
		redisPing  handler.RedisPinger
	)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	relayDone := make(chan struct{})

	if rdb != nil {
		defer rdb.Close()
		subscriber, redisPing = rdb, rdb

		relay := worker.NewEventRelay(event.NewRedisPublisher(rdb, config.EventChannel, log), worker.RelayBufferSize, log)
		publisher = relay
		go func() {
			relay.Start(workerCtx)
			close(relayDone)
		}()
	} else {
		close(relayDone)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	subjectRepo := repository.NewSubjectRepository(pool, log)
	competencyRepo := repository.NewCompetencyRepository(pool, log)

	// ─── Initialize Services ──────────────────────────────────────────
	subjectService := service.NewSubjectService(subjectRepo, competencyRepo, publisher, log)
	competencyService := service.NewCompetencyService(competencyRepo, subjectRepo, publisher, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Health:     handler.NewHealthHandler(cfg.ServiceName, pool, redisPing, log),
		Subject:    handler.NewSubjectHandler(subjectService),
		Competency: handler.NewCompetencyHandler(competencyService),
		Export:     handler.NewExportHandler(subjectService, competencyService, log),
		Events:     handler.NewEventsHandler(subscriber, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the event relay and wait for its queue to drain.
	workerCancel()
	<-relayDone

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
