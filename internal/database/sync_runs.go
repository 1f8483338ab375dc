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

	"github.com/goccy/go-json"

	"github.com/tomtom215/tubelytics/internal/models"
)

const selectRunColumns = `SELECT id, channel_id, started_at, finished_at, status, checkpoint, error, stages FROM sync_runs`

// CreateSyncRun records the start of a run.
func (db *DB) CreateSyncRun(ctx context.Context, run *models.SyncRun) (err error) {
	start := time.Now()
	defer func() { observe("insert", "sync_runs", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO sync_runs (id, channel_id, started_at, status, checkpoint, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.ChannelID, run.StartedAt.UTC(), run.Status, run.Checkpoint, run.Error)
	if err != nil {
		return fmt.Errorf("create sync run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateSyncCheckpoint stores the last completed stage of a running sync.
func (db *DB) UpdateSyncCheckpoint(ctx context.Context, runID, checkpoint string) (err error) {
	start := time.Now()
	defer func() { observe("update", "sync_runs", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE sync_runs SET checkpoint = ? WHERE id = ?`, checkpoint, runID)
	if err != nil {
		return fmt.Errorf("update checkpoint %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sync run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// FinishSyncRun stores the terminal state of a run with its stage timings.
func (db *DB) FinishSyncRun(ctx context.Context, run *models.SyncRun) (err error) {
	start := time.Now()
	defer func() { observe("update", "sync_runs", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	stages, err := json.Marshal(run.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	finished := db.now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		UPDATE sync_runs
		SET finished_at = ?, status = ?, checkpoint = ?, error = ?, stages = ?
		WHERE id = ?`,
		finished, run.Status, run.Checkpoint, run.Error, string(stages), run.ID)
	if err != nil {
		return fmt.Errorf("finish sync run %s: %w", run.ID, err)
	}
	return nil
}

// GetSyncRun returns the run with id, or ErrNotFound.
func (db *DB) GetSyncRun(ctx context.Context, id string) (*models.SyncRun, error) {
	runs, err := db.listRuns(ctx, selectRunColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("sync run %s: %w", id, ErrNotFound)
	}
	return &runs[0], nil
}

// ListSyncRuns returns the most recent runs, newest first.
func (db *DB) ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.listRuns(ctx, selectRunColumns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
}

// LastSuccessfulRun returns the newest completed run of channelID, or nil.
func (db *DB) LastSuccessfulRun(ctx context.Context, channelID string) (*models.SyncRun, error) {
	runs, err := db.listRuns(ctx, selectRunColumns+`
		WHERE channel_id = ? AND status = ?
		ORDER BY finished_at DESC LIMIT 1`, channelID, models.RunStatusCompleted)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func (db *DB) listRuns(ctx context.Context, query string, args ...any) ([]models.SyncRun, error) {
	var out []models.SyncRun
	err := db.queryRows(ctx, "sync_runs", query, args, func(rows *sql.Rows) error {
		var r models.SyncRun
		var finished sql.NullTime
		var stages sql.NullString
		if err := rows.Scan(&r.ID, &r.ChannelID, &r.StartedAt, &finished, &r.Status,
			&r.Checkpoint, &r.Error, &stages); err != nil {
			return err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		if stages.Valid && stages.String != "" && stages.String != "null" {
			if err := json.Unmarshal([]byte(stages.String), &r.Stages); err != nil {
				return fmt.Errorf("decode stages of run %s: %w", r.ID, err)
			}
		}
		out = append(out, r)
		return nil
	})
	return out, err
}
