// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"database/sql"

	"github.com/tomtom215/tubelytics/internal/models"
)

// Insights are immutable: re-saving an existing ID is a no-op.
const insertInsightSQL = `INSERT INTO insights (
		id, run_id, channel_id, kind, insight_type, severity, title, description, evidence, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING`

// SaveInsights appends insights in one transaction.
func (db *DB) SaveInsights(ctx context.Context, insights []models.Insight) error {
	return upsertBatch(ctx, db, "insights", insertInsightSQL, insights, func(in models.Insight) []any {
		return []any{in.ID, in.RunID, in.ChannelID, in.Kind, in.Type, in.Severity, in.Title,
			in.Description, nullString(in.Evidence), in.CreatedAt.UTC()}
	})
}

// ListInsights returns the newest insights of channelID, up to limit.
func (db *DB) ListInsights(ctx context.Context, channelID string, limit int) ([]models.Insight, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []models.Insight
	err := db.queryRows(ctx, "insights", `
		SELECT id, run_id, channel_id, kind, insight_type, severity, title, description, evidence, created_at
		FROM insights
		WHERE channel_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?`,
		[]any{channelID, limit},
		func(rows *sql.Rows) error {
			var in models.Insight
			var evidence sql.NullString
			if err := rows.Scan(&in.ID, &in.RunID, &in.ChannelID, &in.Kind, &in.Type, &in.Severity,
				&in.Title, &in.Description, &evidence, &in.CreatedAt); err != nil {
				return err
			}
			if evidence.Valid {
				in.Evidence = []byte(evidence.String)
			}
			out = append(out, in)
			return nil
		})
	return out, err
}
