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

	"github.com/tomtom215/tubelytics/internal/models"
)

// upsertChannelSQL targets channels or competitor_channels.
const upsertChannelSQL = `INSERT INTO %s (
		id, title, created_at, subscriber_count, video_count, view_count, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		created_at = EXCLUDED.created_at,
		subscriber_count = EXCLUDED.subscriber_count,
		video_count = EXCLUDED.video_count,
		view_count = EXCLUDED.view_count,
		updated_at = EXCLUDED.updated_at`

// channelTable returns the table holding owned or competitor rows.
func channelTable(competitor bool) string {
	if competitor {
		return "competitor_channels"
	}
	return "channels"
}

func videoTable(competitor bool) string {
	if competitor {
		return "competitor_videos"
	}
	return "videos"
}

// splitCompetitors partitions rows by their competitor flag.
func splitCompetitors[T any](rows []T, competitor func(T) bool) (owned, rivals []T) {
	for _, r := range rows {
		if competitor(r) {
			rivals = append(rivals, r)
		} else {
			owned = append(owned, r)
		}
	}
	return owned, rivals
}

// UpsertChannel inserts or updates a channel profile.
func (db *DB) UpsertChannel(ctx context.Context, ch models.Channel) error {
	return db.UpsertChannels(ctx, []models.Channel{ch})
}

// UpsertChannels inserts or updates channel profiles. IsCompetitor selects
// the table, so the owned profile and a competitor profile of the same
// channel are kept apart.
func (db *DB) UpsertChannels(ctx context.Context, channels []models.Channel) error {
	now := db.now().UTC()
	args := func(c models.Channel) []any {
		updated := c.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		return []any{c.ID, c.Title, nullTime(c.CreatedAt), c.SubscriberCount, c.VideoCount, c.ViewCount, updated}
	}
	owned, rivals := splitCompetitors(channels, func(c models.Channel) bool { return c.IsCompetitor })
	for _, part := range []struct {
		competitor bool
		rows       []models.Channel
	}{{false, owned}, {true, rivals}} {
		table := channelTable(part.competitor)
		if err := upsertBatch(ctx, db, table, fmt.Sprintf(upsertChannelSQL, table), part.rows, args); err != nil {
			return err
		}
	}
	return nil
}

const channelColumns = `id, title, created_at, subscriber_count, video_count, view_count, updated_at`

// GetChannel returns the channel with id, or ErrNotFound. The owned profile
// wins when the channel is also tracked as a competitor.
func (db *DB) GetChannel(ctx context.Context, id string) (ch *models.Channel, err error) {
	start := time.Now()
	defer func() { observe("select", "channels", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var c models.Channel
	var created sql.NullTime
	err = db.conn.QueryRowContext(ctx, `
		SELECT id, title, created_at, subscriber_count, video_count, view_count, is_competitor, updated_at
		FROM (
			SELECT `+channelColumns+`, FALSE AS is_competitor FROM channels WHERE id = ?
			UNION ALL
			SELECT `+channelColumns+`, TRUE AS is_competitor FROM competitor_channels WHERE id = ?
		)
		ORDER BY is_competitor
		LIMIT 1`, id, id).
		Scan(&c.ID, &c.Title, &created, &c.SubscriberCount, &c.VideoCount, &c.ViewCount, &c.IsCompetitor, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", id, err)
	}
	c.CreatedAt = created.Time
	return &c, nil
}

// upsertVideoSQL targets videos or competitor_videos.
const upsertVideoSQL = `INSERT INTO %s (
		id, channel_id, title, published_at, duration_seconds, view_count, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		published_at = EXCLUDED.published_at,
		duration_seconds = EXCLUDED.duration_seconds,
		view_count = EXCLUDED.view_count,
		updated_at = EXCLUDED.updated_at`

// UpsertVideos inserts or updates video metadata, routed by IsCompetitor.
func (db *DB) UpsertVideos(ctx context.Context, videos []models.Video) error {
	now := db.now().UTC()
	args := func(v models.Video) []any {
		updated := v.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		return []any{v.ID, v.ChannelID, v.Title, v.PublishedAt.UTC(), v.DurationSeconds, v.ViewCount, updated}
	}
	owned, rivals := splitCompetitors(videos, func(v models.Video) bool { return v.IsCompetitor })
	for _, part := range []struct {
		competitor bool
		rows       []models.Video
	}{{false, owned}, {true, rivals}} {
		table := videoTable(part.competitor)
		if err := upsertBatch(ctx, db, table, fmt.Sprintf(upsertVideoSQL, table), part.rows, args); err != nil {
			return err
		}
	}
	return nil
}

// selectVideoColumns reads a video table, tagging rows with the flag the
// table implies.
const selectVideoColumns = `SELECT id, channel_id, title, published_at, duration_seconds, view_count, %t AS is_competitor, updated_at FROM %s`

// ListVideos returns the owned videos of channelID, newest first.
func (db *DB) ListVideos(ctx context.Context, channelID string) ([]models.Video, error) {
	query := fmt.Sprintf(selectVideoColumns, false, videoTable(false))
	return db.queryVideos(ctx, query+` WHERE channel_id = ? ORDER BY published_at DESC, id`, channelID)
}

// ListCompetitorVideos returns every competitor video, newest first.
func (db *DB) ListCompetitorVideos(ctx context.Context) ([]models.Video, error) {
	query := fmt.Sprintf(selectVideoColumns, true, videoTable(true))
	return db.queryVideos(ctx, query+` ORDER BY published_at DESC, id`)
}

func (db *DB) queryVideos(ctx context.Context, query string, args ...any) (out []models.Video, err error) {
	start := time.Now()
	defer func() { observe("select", "videos", start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.ChannelID, &v.Title, &v.PublishedAt, &v.DurationSeconds,
			&v.ViewCount, &v.IsCompetitor, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
