// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaStatements create every table. Day columns are DATE in UTC.
// Owned and competitor profiles live in separate tables so a channel can be
// both without one row overwriting the other.
// growth_curves has no primary key because ReplaceGrowthCurve deletes and
// reinserts the same keys in one transaction.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS channels (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL,
		created_at TIMESTAMP,
		subscriber_count BIGINT NOT NULL DEFAULT 0,
		video_count BIGINT NOT NULL DEFAULT 0,
		view_count BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id VARCHAR PRIMARY KEY,
		channel_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		published_at TIMESTAMP NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		view_count BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_channels (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL,
		created_at TIMESTAMP,
		subscriber_count BIGINT NOT NULL DEFAULT 0,
		video_count BIGINT NOT NULL DEFAULT 0,
		view_count BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_videos (
		id VARCHAR PRIMARY KEY,
		channel_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		published_at TIMESTAMP NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		view_count BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS channel_daily_metrics (
		channel_id VARCHAR NOT NULL,
		day DATE NOT NULL,
		views BIGINT NOT NULL DEFAULT 0,
		watch_minutes DOUBLE NOT NULL DEFAULT 0,
		impressions BIGINT NOT NULL DEFAULT 0,
		ctr DOUBLE NOT NULL DEFAULT 0,
		likes BIGINT NOT NULL DEFAULT 0,
		comments BIGINT NOT NULL DEFAULT 0,
		shares BIGINT NOT NULL DEFAULT 0,
		subscribers_gained BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (channel_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS video_daily_metrics (
		video_id VARCHAR NOT NULL,
		day DATE NOT NULL,
		views BIGINT NOT NULL DEFAULT 0,
		watch_minutes DOUBLE NOT NULL DEFAULT 0,
		impressions BIGINT NOT NULL DEFAULT 0,
		ctr DOUBLE NOT NULL DEFAULT 0,
		likes BIGINT NOT NULL DEFAULT 0,
		comments BIGINT NOT NULL DEFAULT 0,
		shares BIGINT NOT NULL DEFAULT 0,
		subscribers_gained BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (video_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_snapshots (
		video_id VARCHAR NOT NULL,
		day DATE NOT NULL,
		view_count BIGINT NOT NULL,
		PRIMARY KEY (video_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS video_momentum (
		video_id VARCHAR NOT NULL,
		day DATE NOT NULL,
		velocity_24h DOUBLE NOT NULL,
		velocity_7d DOUBLE NOT NULL,
		momentum_score DOUBLE NOT NULL,
		is_hit BOOLEAN NOT NULL,
		computed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (video_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS quality_scores (
		video_id VARCHAR PRIMARY KEY,
		score DOUBLE NOT NULL,
		velocity_score DOUBLE NOT NULL,
		efficiency_score DOUBLE NOT NULL,
		conversion_score DOUBLE NOT NULL,
		explanation VARCHAR,
		computed_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS growth_curves (
		cluster VARCHAR NOT NULL,
		duration_bucket VARCHAR NOT NULL,
		day INTEGER NOT NULL,
		median_pct DOUBLE NOT NULL,
		p25_pct DOUBLE NOT NULL,
		p75_pct DOUBLE NOT NULL,
		sample_size INTEGER NOT NULL,
		fitted_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS forecast_models (
		id VARCHAR PRIMARY KEY,
		model_type VARCHAR NOT NULL,
		model_name VARCHAR NOT NULL,
		version INTEGER NOT NULL,
		trained_at TIMESTAMP NOT NULL,
		smape DOUBLE NOT NULL,
		mae DOUBLE NOT NULL,
		windows INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS insights (
		id VARCHAR PRIMARY KEY,
		run_id VARCHAR NOT NULL,
		channel_id VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		insight_type VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL,
		evidence VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id VARCHAR PRIMARY KEY,
		channel_id VARCHAR NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		status VARCHAR NOT NULL,
		checkpoint VARCHAR NOT NULL DEFAULT '',
		error VARCHAR NOT NULL DEFAULT '',
		stages VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_channel ON videos (channel_id)`,
	`CREATE INDEX IF NOT EXISTS idx_competitor_videos_channel ON competitor_videos (channel_id)`,
	`CREATE INDEX IF NOT EXISTS idx_insights_channel ON insights (channel_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_forecast_models_type ON forecast_models (model_type, version)`,
}

func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", stmt, err)
		}
	}
	return nil
}
