// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
)

const metricColumns = `views, watch_minutes, impressions, ctr, likes, comments, shares, subscribers_gained`

const metricUpdates = `
		views = EXCLUDED.views,
		watch_minutes = EXCLUDED.watch_minutes,
		impressions = EXCLUDED.impressions,
		ctr = EXCLUDED.ctr,
		likes = EXCLUDED.likes,
		comments = EXCLUDED.comments,
		shares = EXCLUDED.shares,
		subscribers_gained = EXCLUDED.subscribers_gained`

var (
	upsertChannelMetricSQL = `INSERT INTO channel_daily_metrics (channel_id, day, ` + metricColumns + `)
	VALUES (?, CAST(? AS DATE), ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (channel_id, day) DO UPDATE SET` + metricUpdates

	upsertVideoMetricSQL = `INSERT INTO video_daily_metrics (video_id, day, ` + metricColumns + `)
	VALUES (?, CAST(? AS DATE), ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (video_id, day) DO UPDATE SET` + metricUpdates
)

func metricArgs(id string, day time.Time, m models.DayMetrics) []any {
	return []any{
		id, models.Day(day), m.Views, m.WatchMinutes, m.Impressions, m.CTR,
		m.Likes, m.Comments, m.Shares, m.SubscribersGained,
	}
}

// UpsertChannelMetrics stores channel day rows, replacing existing days.
func (db *DB) UpsertChannelMetrics(ctx context.Context, rows []models.ChannelDayMetric) error {
	return upsertBatch(ctx, db, "channel_daily_metrics", upsertChannelMetricSQL, rows, func(r models.ChannelDayMetric) []any {
		return metricArgs(r.ChannelID, r.Day, r.DayMetrics)
	})
}

// UpsertVideoMetrics stores video day rows, replacing existing days.
func (db *DB) UpsertVideoMetrics(ctx context.Context, rows []models.VideoDayMetric) error {
	return upsertBatch(ctx, db, "video_daily_metrics", upsertVideoMetricSQL, rows, func(r models.VideoDayMetric) []any {
		return metricArgs(r.VideoID, r.Day, r.DayMetrics)
	})
}

// GetChannelMetrics returns the channel's day rows within r, oldest first.
func (db *DB) GetChannelMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.ChannelDayMetric, error) {
	var out []models.ChannelDayMetric
	err := db.queryRows(ctx, "channel_daily_metrics", `
		SELECT channel_id, day, `+metricColumns+`
		FROM channel_daily_metrics
		WHERE channel_id = ? AND day BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		ORDER BY day`,
		[]any{channelID, models.Day(r.Start), models.Day(r.End)},
		func(rows *sql.Rows) error {
			var m models.ChannelDayMetric
			if err := rows.Scan(append([]any{&m.ChannelID, &m.Day}, metricDest(&m.DayMetrics)...)...); err != nil {
				return err
			}
			out = append(out, m)
			return nil
		})
	return out, err
}

// GetVideoMetrics returns one video's day rows within r, oldest first.
func (db *DB) GetVideoMetrics(ctx context.Context, videoID string, r models.DateRange) ([]models.VideoDayMetric, error) {
	return db.videoMetrics(ctx, `
		SELECT video_id, day, `+metricColumns+`
		FROM video_daily_metrics
		WHERE video_id = ? AND day BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		ORDER BY day`, videoID, models.Day(r.Start), models.Day(r.End))
}

// GetChannelVideoMetrics returns the day rows of every video of channelID
// within r, ordered by video then day.
func (db *DB) GetChannelVideoMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.VideoDayMetric, error) {
	return db.videoMetrics(ctx, `
		SELECT m.video_id, m.day, `+prefixed("m", metricColumns)+`
		FROM video_daily_metrics m
		JOIN videos v ON v.id = m.video_id
		WHERE v.channel_id = ? AND m.day BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)
		ORDER BY m.video_id, m.day`, channelID, models.Day(r.Start), models.Day(r.End))
}

// GetVideoViewHistory returns a video's daily views from its publish day
// onward, ordered by day. Missing days are absent, not zero.
func (db *DB) GetVideoViewHistory(ctx context.Context, videoID string) (models.Series, error) {
	var out models.Series
	err := db.queryRows(ctx, "video_daily_metrics", `
		SELECT m.day, m.views
		FROM video_daily_metrics m
		JOIN videos v ON v.id = m.video_id
		WHERE m.video_id = ? AND m.day >= CAST(v.published_at AS DATE)
		ORDER BY m.day`,
		[]any{videoID},
		func(rows *sql.Rows) error {
			var p models.Point
			var views int64
			if err := rows.Scan(&p.Date, &views); err != nil {
				return err
			}
			p.Value = float64(views)
			out = append(out, p)
			return nil
		})
	return out, err
}

func (db *DB) videoMetrics(ctx context.Context, query string, args ...any) ([]models.VideoDayMetric, error) {
	var out []models.VideoDayMetric
	err := db.queryRows(ctx, "video_daily_metrics", query, args, func(rows *sql.Rows) error {
		var m models.VideoDayMetric
		if err := rows.Scan(append([]any{&m.VideoID, &m.Day}, metricDest(&m.DayMetrics)...)...); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (db *DB) queryRows(ctx context.Context, table, query string, args []any, scan func(*sql.Rows) error) (err error) {
	start := time.Now()
	defer func() { observe("select", table, start, err) }()

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
	}
	return rows.Err()
}

func metricDest(m *models.DayMetrics) []any {
	return []any{&m.Views, &m.WatchMinutes, &m.Impressions, &m.CTR, &m.Likes, &m.Comments, &m.Shares, &m.SubscribersGained}
}

func prefixed(alias, columns string) string {
	return alias + "." + strings.ReplaceAll(columns, ", ", ", "+alias+".")
}
