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

const upsertQualitySQL = `INSERT INTO quality_scores (
		video_id, score, velocity_score, efficiency_score, conversion_score, explanation, computed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (video_id) DO UPDATE SET
		score = EXCLUDED.score,
		velocity_score = EXCLUDED.velocity_score,
		efficiency_score = EXCLUDED.efficiency_score,
		conversion_score = EXCLUDED.conversion_score,
		explanation = EXCLUDED.explanation,
		computed_at = EXCLUDED.computed_at`

// UpsertQualityScores keeps the latest score per video.
func (db *DB) UpsertQualityScores(ctx context.Context, scores []models.QualityScore) error {
	return upsertBatch(ctx, db, "quality_scores", upsertQualitySQL, scores, func(q models.QualityScore) []any {
		return []any{q.VideoID, q.Score, q.VelocityScore, q.EfficiencyScore, q.ConversionScore,
			nullString(q.Explanation), q.ComputedAt.UTC()}
	})
}

// ListQualityScores returns the scores of channelID's videos, best first.
func (db *DB) ListQualityScores(ctx context.Context, channelID string) ([]models.QualityScore, error) {
	var out []models.QualityScore
	err := db.queryRows(ctx, "quality_scores", `
		SELECT q.video_id, q.score, q.velocity_score, q.efficiency_score, q.conversion_score,
			q.explanation, q.computed_at
		FROM quality_scores q
		JOIN videos v ON v.id = q.video_id
		WHERE v.channel_id = ?
		ORDER BY q.score DESC, q.video_id`,
		[]any{channelID},
		func(rows *sql.Rows) error {
			var q models.QualityScore
			var explanation sql.NullString
			if err := rows.Scan(&q.VideoID, &q.Score, &q.VelocityScore, &q.EfficiencyScore,
				&q.ConversionScore, &explanation, &q.ComputedAt); err != nil {
				return err
			}
			if explanation.Valid {
				q.Explanation = []byte(explanation.String)
			}
			out = append(out, q)
			return nil
		})
	return out, err
}

func nullString(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
