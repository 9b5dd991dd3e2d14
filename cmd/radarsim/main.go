package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/river-radar-sim/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/river-radar-sim/internal/adapter/kafka"
	sqliteadapter "github.com/couchcryptid/river-radar-sim/internal/adapter/sqlite"
	"github.com/couchcryptid/river-radar-sim/internal/config"
	"github.com/couchcryptid/river-radar-sim/internal/domain"
	"github.com/couchcryptid/river-radar-sim/internal/observability"
	"github.com/couchcryptid/river-radar-sim/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	sessionID := uuid.NewString()

	opts := []domain.Option{domain.WithScene(cfg.Scene), domain.WithClock(clock)}
	if cfg.Seed != 0 {
		opts = append(opts, domain.WithSeed(cfg.Seed))
		logger.Info("deterministic jitter enabled", "seed", cfg.Seed)
	}
	engine := domain.NewEngine(cfg.Inputs, opts...)
	scheduler := pipeline.NewScheduler(engine, clock, cfg.TickInterval(), logger, metrics)

	logger.Info("simulation configured",
		"session_id", sessionID,
		"tick_rate", cfg.TickRate,
		"scenario_file", cfg.ScenarioFile,
		"rain_level", cfg.Inputs.RainLevel,
		"river_width_m", cfg.Inputs.RiverWidthM,
		"beam_angle_deg", cfg.Inputs.BeamAngleDeg,
		"threshold", cfg.Inputs.Threshold,
	)

	// Reading sinks are optional; with none configured the publisher idles.
	var (
		sinks   []pipeline.Sink
		closers []namedCloser
		history httpadapter.HistoryReader
	)
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		closers = append(closers, namedCloser{"kafka writer", writer})
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}
	if cfg.SQLitePath != "" {
		store, err := sqliteadapter.NewStore(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open reading store", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, store)
		closers = append(closers, namedCloser{"sqlite store", store})
		history = store
		logger.Info("sqlite reading log enabled", "path", cfg.SQLitePath)
	}

	publisher := pipeline.NewPublisher(scheduler, sinks, pipeline.PublisherOptions{
		SessionID: sessionID,
		Interval:  cfg.PublishInterval,
		BatchSize: cfg.PublishBatchSize,
	}, clock, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, scheduler, scheduler, history, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := publisher.Run(ctx); err != nil {
			logger.Error("publisher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// The publisher flushes queued readings before returning.
	wg.Wait()

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error(c.name+" close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

type namedCloser struct {
	name string
	io.Closer
}
