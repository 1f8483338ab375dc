// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

const selectModelColumns = `SELECT id, model_type, model_name, version, trained_at, smape, mae, windows, is_active FROM forecast_models`

// LatestModelVersion returns the highest version trained for modelType, or 0.
func (db *DB) LatestModelVersion(ctx context.Context, modelType string) (version int, err error) {
	start := time.Now()
	defer func() { observe("select", "forecast_models", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM forecast_models WHERE model_type = ?`, modelType).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("latest model version %s: %w", modelType, err)
	}
	return version, nil
}

// SaveTrainingRun inserts records and deactivates every earlier model of
// modelType in one transaction, leaving at most one active record.
func (db *DB) SaveTrainingRun(ctx context.Context, modelType string, records []models.ForecastModelRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "forecast_models", time.Since(start), err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	active := 0
	for _, rec := range records {
		if rec.Type != modelType {
			return fmt.Errorf("record %s has type %q, want %q", rec.ID, rec.Type, modelType)
		}
		if rec.IsActive {
			active++
		}
	}
	if active > 1 {
		return fmt.Errorf("training run for %s marks %d models active", modelType, active)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if active > 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE forecast_models SET is_active = FALSE WHERE model_type = ? AND is_active`, modelType); err != nil {
				return fmt.Errorf("deactivate %s models: %w", modelType, err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecast_models (
				id, model_type, model_name, version, trained_at, smape, mae, windows, is_active
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare forecast model insert: %w", err)
		}
		defer closeQuietly(stmt)

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.ID, rec.Type, rec.ModelName, rec.Version,
				rec.TrainedAt.UTC(), rec.SMAPE, rec.MAE, rec.Windows, rec.IsActive); err != nil {
				return fmt.Errorf("insert forecast model %s: %w", rec.ModelName, err)
			}
		}
		return nil
	})
}

// GetActiveModel returns the active model of modelType, or nil if none.
func (db *DB) GetActiveModel(ctx context.Context, modelType string) (rec *models.ForecastModelRecord, err error) {
	start := time.Now()
	defer func() { observe("select", "forecast_models", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var r models.ForecastModelRecord
	err = db.conn.QueryRowContext(ctx, selectModelColumns+`
		WHERE model_type = ? AND is_active
		ORDER BY version DESC LIMIT 1`, modelType).
		Scan(&r.ID, &r.Type, &r.ModelName, &r.Version, &r.TrainedAt, &r.SMAPE, &r.MAE, &r.Windows, &r.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active model %s: %w", modelType, err)
	}
	return &r, nil
}

// ListModels returns every record of modelType, newest version first.
func (db *DB) ListModels(ctx context.Context, modelType string) ([]models.ForecastModelRecord, error) {
	var out []models.ForecastModelRecord
	err := db.queryRows(ctx, "forecast_models", selectModelColumns+`
		WHERE model_type = ?
		ORDER BY version DESC, smape, model_name`,
		[]any{modelType},
		func(rows *sql.Rows) error {
			var r models.ForecastModelRecord
			if err := rows.Scan(&r.ID, &r.Type, &r.ModelName, &r.Version, &r.TrainedAt,
				&r.SMAPE, &r.MAE, &r.Windows, &r.IsActive); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	return out, err
}
