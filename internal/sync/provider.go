// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
)

// MaxVideosPerChannel is the most recent-upload count fetched per channel.
const MaxVideosPerChannel = 50

// DataProvider is the remote source of channel data. Metric calls return
// {date, metric, value} triples; use PivotChannelMetrics and
// PivotVideoMetrics to turn them into day rows.
//
// Implementations return *apperror.Error values so callers can tell
// retryable failures (network, quota) from fatal ones (auth, validation).
type DataProvider interface {
	GetChannel(ctx context.Context, channelID string) (*models.Channel, error)
	ListVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error)
	GetChannelDailyMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.MetricValue, error)
	GetVideoDailyMetrics(ctx context.Context, videoIDs []string, r models.DateRange) ([]models.MetricValue, error)

	GetPublicChannel(ctx context.Context, channelID string) (*models.Channel, error)
	GetPublicVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error)
}

type dayKey struct {
	entity string
	day    time.Time
}

// pivot groups triples by (entity, day). Unknown metric names are dropped.
func pivot(values []models.MetricValue) (map[dayKey]*models.DayMetrics, []dayKey) {
	rows := make(map[dayKey]*models.DayMetrics)
	var keys []dayKey
	for _, v := range values {
		k := dayKey{entity: v.EntityID, day: models.Day(v.Date)}
		m, ok := rows[k]
		if !ok {
			m = &models.DayMetrics{}
			rows[k] = m
			keys = append(keys, k)
		}
		m.Set(v.Metric, v.Value)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].entity != keys[j].entity {
			return keys[i].entity < keys[j].entity
		}
		return keys[i].day.Before(keys[j].day)
	})
	return rows, keys
}

// PivotChannelMetrics folds triples into one row per day for channelID.
// The triples' EntityID is ignored.
func PivotChannelMetrics(channelID string, values []models.MetricValue) []models.ChannelDayMetric {
	normalized := make([]models.MetricValue, len(values))
	for i, v := range values {
		v.EntityID = channelID
		normalized[i] = v
	}
	rows, keys := pivot(normalized)
	out := make([]models.ChannelDayMetric, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.ChannelDayMetric{ChannelID: channelID, Day: k.day, DayMetrics: *rows[k]})
	}
	return out
}

// PivotVideoMetrics folds triples into one row per (video, day), ordered by
// video then day.
func PivotVideoMetrics(values []models.MetricValue) []models.VideoDayMetric {
	rows, keys := pivot(values)
	out := make([]models.VideoDayMetric, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.VideoDayMetric{VideoID: k.entity, Day: k.day, DayMetrics: *rows[k]})
	}
	return out
}
