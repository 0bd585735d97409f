package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pkmn-analytics/battle-features/internal/config"
	"github.com/pkmn-analytics/battle-features/internal/features"
	"github.com/pkmn-analytics/battle-features/internal/handlers"
	"github.com/pkmn-analytics/battle-features/internal/logic"
	"github.com/pkmn-analytics/battle-features/internal/store"
	"github.com/pkmn-analytics/battle-features/internal/worker"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Sugar().Fatalw("Feature service stopped", "error", err)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, err := features.LoadProfiles(cfg.FeatureProfilePath)
	if err != nil {
		return err
	}
	profile, err := profiles.Get(cfg.FeatureProfile)
	if err != nil {
		return err
	}
	extractor, err := features.New(profile, features.WithLogger(logger), features.WithCompletenessReport(true))
	if err != nil {
		return err
	}

	svcCfg := logic.ExtractionConfig{Extractor: extractor, Logger: logger}
	checks := map[string]handlers.ReadyCheck{}

	switch cfg.FeatureSink {
	case config.SinkClickHouse:
		conn, err := store.OpenClickHouse(ctx, cfg.ClickHouseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		sink := store.NewClickHouseSink(conn)
		if err := sink.Migrate(ctx); err != nil {
			return err
		}
		svcCfg.Sink = sink
		checks["clickhouse"] = conn.Ping
	case config.SinkSQLite:
		sink, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer sink.Close()
		svcCfg.Sink = sink
		checks["sqlite"] = sink.Ping
	}

	if cfg.PostgresURL != "" {
		pool, err := store.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		runs := store.NewPostgresRunStore(pool)
		if err := runs.Migrate(ctx); err != nil {
			return err
		}
		svcCfg.Runs = runs
		checks["postgres"] = pool.Ping
	}

	if cfg.RedisURL != "" {
		client, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		svcCfg.Cache = store.NewRedisCache(client, cfg.CacheTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	service := logic.NewExtractionService(svcCfg)

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Processor:     service,
		Logger:        logger,
	})
	pool.Start(context.Background())

	h := handlers.New(handlers.Config{
		Service:        service,
		WorkerPool:     pool,
		Profiles:       profiles,
		MaxBodySize:    cfg.MaxBodySize,
		AllowedOrigins: cfg.AllowedOrigins,
		Checks:         checks,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Feature service listening",
			"port", cfg.Port,
			"profile", profile.Name,
			"columns", len(extractor.Schema()),
			"sink", cfg.FeatureSink,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		pool.Stop()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP shutdown incomplete", "error", err)
	}
	// Stop after the server so no handler enqueues into a closed queue.
	pool.Stop()
	return nil
}
