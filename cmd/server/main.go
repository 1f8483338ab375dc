// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/tubelytics/internal/api"
	"github.com/tomtom215/tubelytics/internal/config"
	"github.com/tomtom215/tubelytics/internal/database"
	"github.com/tomtom215/tubelytics/internal/forecast"
	"github.com/tomtom215/tubelytics/internal/insights"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/nowcast"
	"github.com/tomtom215/tubelytics/internal/supervisor"
	"github.com/tomtom215/tubelytics/internal/supervisor/services"
	"github.com/tomtom215/tubelytics/internal/sync"
	"github.com/tomtom215/tubelytics/internal/topics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LogConfig())

	logging.Info().
		Str("version", version).
		Str("channel_id", cfg.YouTube.ChannelID).
		Int("competitors", len(cfg.YouTube.CompetitorIDs)).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Tubelytics with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote provider: YouTube client behind a circuit breaker.
	client, err := sync.NewYouTubeClient(ctx, &cfg.YouTube)
	if err != nil {
		_ = db.Close()
		logging.Fatal().Err(err).Msg("Failed to create YouTube client")
	}
	provider := sync.NewCircuitBreakerProvider(client, &cfg.YouTube)

	registry := forecast.NewRegistry(db, forecast.RegistryConfig{
		MinHistory: cfg.Forecast.MinHistoryDays,
		Backtest: forecast.BacktestOptions{
			Window:  cfg.Forecast.BacktestWindow,
			Horizon: cfg.Forecast.BacktestHorizon,
			Step:    cfg.Forecast.BacktestStep,
		},
		Baseline: forecast.ModelSeasonalNaive,
	})
	curves := nowcast.NewEngine(db, cfg.Forecast.CurveCacheTTL)

	plugins, err := insights.NewStandardRegistry(insights.Options{
		Sensitivity: cfg.Insights.Sensitivity,
		Clusters:    cfg.Insights.Clusters,
		Seed:        cfg.Insights.Seed,
		Namer:       topics.KeywordNamer{},
		Benchmarks:  cfg.Insights.Benchmarks,
	})
	if err != nil {
		_ = db.Close()
		logging.Fatal().Err(err).Msg("Failed to build insight plugin registry")
	}

	// Insight events fan out in-process. The runner only gets a publisher
	// when publishing is enabled.
	var (
		pubSub    *gochannel.GoChannel
		publisher message.Publisher
	)
	if cfg.Insights.Publish {
		pubSub = gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewSlogLogger(logging.NewSlogLogger()),
		)
		publisher = pubSub
		defer func() {
			if err := pubSub.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing insight pub/sub")
			}
		}()
	}
	runner := insights.NewRunner(plugins, db, publisher)

	orchestrator := sync.NewOrchestrator(db, provider, sync.Dependencies{
		Curves:   curves,
		Models:   registry,
		Insights: runner,
		Data:     db,
	}, sync.OptionsFromConfig(cfg))
	scheduler := sync.NewScheduler(orchestrator, sync.ScheduleConfigFromConfig(cfg))

	projector := sync.NewProjector(db, registry, curves, sync.OptionsFromConfig(cfg))
	handler := api.NewHandler(db, scheduler, projector, api.HandlerConfig{
		ChannelID: cfg.YouTube.ChannelID,
		ModelType: cfg.Forecast.ModelType,
		Version:   version,
	})
	mwCfg := api.DefaultMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Server.RateLimitReqs

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mwCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		_ = db.Close()
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	if pubSub != nil {
		tree.AddMessagingService(services.NewRouterService(func() (services.MessageRouter, error) {
			router, err := insights.NewEventRouter(pubSub, nil)
			if err != nil {
				return nil, err
			}
			return router, nil
		}))
		logging.Info().Msg("Insight event router added to supervisor tree")
	}

	tree.AddSyncService(services.NewSyncService(scheduler))
	logging.Info().
		Dur("interval", cfg.Sync.Interval).
		Bool("run_on_startup", cfg.Sync.RunOnStartup).
		Msg("Sync scheduler added to supervisor tree")

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if err := db.Checkpoint(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Final database checkpoint failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}
