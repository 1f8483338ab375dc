// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package database is the DuckDB analytics store for Tubelytics.

DB implements every persistence contract used by the pipeline: the sync
orchestrator store, the insight data access and sink, the forecast model
store and the growth-curve store. It also exposes Query, a read-only SQL
executor used by the assistant collaborator.

# Tables

  - channels, videos: profiles of the owned channel and competitors
  - channel_daily_metrics, video_daily_metrics: one row per entity and day
  - competitor_snapshots: daily public view counts of competitor videos
  - video_momentum: derived velocity and hit flags per snapshot day
  - quality_scores: latest quality score per video
  - growth_curves: fitted cumulative view curves per cluster and bucket
  - forecast_models: registry records, at most one active per model type
  - insights: plugin output, one row per insight or alert
  - sync_runs: run history with checkpoint and stage timings

# Idempotence

All batch writes use INSERT ... ON CONFLICT DO UPDATE inside a single
transaction. Re-running a sync with the same provider data leaves the store
unchanged apart from updated_at columns.

# Testing

Tests open an in-memory database:

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB"})
*/
package database
