// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// ReplaceGrowthCurve atomically swaps the stored curve of (cluster, bucket)
// for points. Readers see either the old curve or the new one.
func (db *DB) ReplaceGrowthCurve(ctx context.Context, cluster, bucket string, points []models.GrowthCurvePoint) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace", "growth_curves", time.Since(start), err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM growth_curves WHERE cluster = ? AND duration_bucket = ?`, cluster, bucket); err != nil {
			return fmt.Errorf("delete growth curve %s/%s: %w", cluster, bucket, err)
		}
		if len(points) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO growth_curves (
				cluster, duration_bucket, day, median_pct, p25_pct, p75_pct, sample_size, fitted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare growth curve insert: %w", err)
		}
		defer closeQuietly(stmt)

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, cluster, bucket, p.Day, p.MedianPct, p.P25Pct,
				p.P75Pct, p.SampleSize, p.FittedAt.UTC()); err != nil {
				return fmt.Errorf("insert growth curve day %d: %w", p.Day, err)
			}
		}
		return nil
	})
}

// GetGrowthCurve returns the stored curve of (cluster, bucket) ordered by day.
// An unknown key yields an empty slice.
func (db *DB) GetGrowthCurve(ctx context.Context, cluster, bucket string) ([]models.GrowthCurvePoint, error) {
	var out []models.GrowthCurvePoint
	err := db.queryRows(ctx, "growth_curves", `
		SELECT cluster, duration_bucket, day, median_pct, p25_pct, p75_pct, sample_size, fitted_at
		FROM growth_curves
		WHERE cluster = ? AND duration_bucket = ?
		ORDER BY day`,
		[]any{cluster, bucket},
		func(rows *sql.Rows) error {
			var p models.GrowthCurvePoint
			if err := rows.Scan(&p.Cluster, &p.DurationBucket, &p.Day, &p.MedianPct, &p.P25Pct,
				&p.P75Pct, &p.SampleSize, &p.FittedAt); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	return out, err
}
