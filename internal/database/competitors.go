// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
)

const upsertSnapshotSQL = `INSERT INTO competitor_snapshots (video_id, day, view_count)
	VALUES (?, CAST(? AS DATE), ?)
	ON CONFLICT (video_id, day) DO UPDATE SET view_count = EXCLUDED.view_count`

// UpsertCompetitorSnapshots stores one public view count per video and day.
func (db *DB) UpsertCompetitorSnapshots(ctx context.Context, snaps []models.CompetitorSnapshot) error {
	return upsertBatch(ctx, db, "competitor_snapshots", upsertSnapshotSQL, snaps, func(s models.CompetitorSnapshot) []any {
		return []any{s.VideoID, models.Day(s.Day), s.ViewCount}
	})
}

// GetCompetitorSnapshots returns a video's snapshots, oldest first.
func (db *DB) GetCompetitorSnapshots(ctx context.Context, videoID string) ([]models.CompetitorSnapshot, error) {
	var out []models.CompetitorSnapshot
	err := db.queryRows(ctx, "competitor_snapshots", `
		SELECT video_id, day, view_count FROM competitor_snapshots
		WHERE video_id = ? ORDER BY day`,
		[]any{videoID},
		func(rows *sql.Rows) error {
			var s models.CompetitorSnapshot
			if err := rows.Scan(&s.VideoID, &s.Day, &s.ViewCount); err != nil {
				return err
			}
			out = append(out, s)
			return nil
		})
	return out, err
}

const upsertMomentumSQL = `INSERT INTO video_momentum (
		video_id, day, velocity_24h, velocity_7d, momentum_score, is_hit, computed_at
	) VALUES (?, CAST(? AS DATE), ?, ?, ?, ?, ?)
	ON CONFLICT (video_id, day) DO UPDATE SET
		velocity_24h = EXCLUDED.velocity_24h,
		velocity_7d = EXCLUDED.velocity_7d,
		momentum_score = EXCLUDED.momentum_score,
		is_hit = EXCLUDED.is_hit,
		computed_at = EXCLUDED.computed_at`

// UpsertMomentum stores momentum records, replacing existing days.
func (db *DB) UpsertMomentum(ctx context.Context, records []models.MomentumRecord) error {
	return upsertBatch(ctx, db, "video_momentum", upsertMomentumSQL, records, func(r models.MomentumRecord) []any {
		return []any{r.VideoID, models.Day(r.Day), r.Velocity24h, r.Velocity7d, r.MomentumScore, r.IsHit, r.ComputedAt.UTC()}
	})
}

// ListMomentumHits returns hit records on or after since, strongest first.
func (db *DB) ListMomentumHits(ctx context.Context, since time.Time) ([]models.MomentumRecord, error) {
	var out []models.MomentumRecord
	err := db.queryRows(ctx, "video_momentum", `
		SELECT video_id, day, velocity_24h, velocity_7d, momentum_score, is_hit, computed_at
		FROM video_momentum
		WHERE is_hit AND day >= CAST(? AS DATE)
		ORDER BY momentum_score DESC, video_id`,
		[]any{models.Day(since)},
		func(rows *sql.Rows) error {
			var r models.MomentumRecord
			if err := rows.Scan(&r.VideoID, &r.Day, &r.Velocity24h, &r.Velocity7d,
				&r.MomentumScore, &r.IsHit, &r.ComputedAt); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	return out, err
}
