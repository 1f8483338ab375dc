// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package sync pulls channel data from the remote provider and drives the
derived-analytics pipeline.

Key Components:

  - Orchestrator: single-flight, seven-stage pipeline (see Stages)
  - Scheduler: periodic runs with manual triggers, supervised by suture
  - DataProvider: remote data contract, implemented by YouTubeClient
  - CircuitBreakerProvider: gobreaker wrapper around any DataProvider
  - TokenBucket: rate limiter shared by every provider call
  - Retry: exponential backoff with jitter for retryable error kinds

Stages:

Each run executes these stages strictly in order. A failing stage aborts the
run, marks it failed and returns the normalized error.

 1. channel: owned channel profile
 2. videos: up to 50 most recent uploads
 3. channel_metrics: channel daily metrics, covering at least the last 21 days
 4. video_metrics: per-video daily metrics fetched by three workers
 5. derived: growth-curve refit, quality scores, forecast model training
 6. competitors: public profiles, view snapshots and momentum
 7. insights: insight plugin sweep

After each stage the run's checkpoint label is persisted. The checkpoint is
diagnostic only; a failed run is never resumed from it.

Usage Example:

	provider, err := sync.NewYouTubeClient(ctx, &cfg.YouTube)
	if err != nil {
	    return err
	}
	orch := sync.NewOrchestrator(db, sync.NewCircuitBreakerProvider(provider, &cfg.YouTube),
	    sync.Dependencies{Curves: engine, Models: registry, Insights: runner, Data: db},
	    sync.OptionsFromConfig(cfg))
	result, err := orch.Run(ctx, sync.RunRequest{
	    ChannelID: cfg.YouTube.ChannelID,
	    Range:     models.NewDateRange(time.Now(), cfg.Sync.LookbackDays),
	})

Thread Safety:

Orchestrator.Run may be called from any goroutine; a call made while another
run is active fails immediately with ErrSyncInProgress. Progress callbacks are
invoked synchronously on the calling goroutine. Scheduler.TriggerAsync admits
one pending run at a time and fails with ErrSchedulerStopped outside
Start/Stop.

Between runs, Projector serves channel forecasts and video nowcasts from what
the last run stored.
*/
package sync
