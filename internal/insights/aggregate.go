// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"sort"

	"github.com/tomtom215/tubelytics/internal/models"
)

// videoTotals sums a video's day rows over a window.
type videoTotals struct {
	VideoID      string
	Days         int
	Views        int64
	Impressions  int64
	Clicks       float64
	WatchMinutes float64
	Engagements  int64
}

// CTR is the impression-weighted click-through rate.
func (t *videoTotals) CTR() float64 {
	if t.Impressions == 0 {
		return 0
	}
	return t.Clicks / float64(t.Impressions)
}

func totalsByVideo(rows []models.VideoDayMetric, r models.DateRange) map[string]*videoTotals {
	out := make(map[string]*videoTotals)
	for i := range rows {
		row := &rows[i]
		if !r.Contains(row.Day) {
			continue
		}
		t, ok := out[row.VideoID]
		if !ok {
			t = &videoTotals{VideoID: row.VideoID}
			out[row.VideoID] = t
		}
		t.Days++
		t.Views += row.Views
		t.Impressions += row.Impressions
		t.Clicks += row.CTR * float64(row.Impressions)
		t.WatchMinutes += row.WatchMinutes
		t.Engagements += row.Engagements()
	}
	return out
}

// channelSeries extracts one metric from channel rows as an ordered series.
func channelSeries(rows []models.ChannelDayMetric, value func(*models.DayMetrics) float64) models.Series {
	out := make(models.Series, 0, len(rows))
	for i := range rows {
		out = append(out, models.Point{Date: rows[i].Day, Value: value(&rows[i].DayMetrics)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func views(m *models.DayMetrics) float64 { return float64(m.Views) }

// videoIndex maps video ids to metadata for titles in evidence.
func videoIndex(ctx context.Context, data DataAccess, channelID string) (map[string]models.Video, error) {
	videos, err := data.ListVideos(ctx, channelID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Video, len(videos))
	for _, v := range videos {
		out[v.ID] = v
	}
	return out, nil
}

func titleOf(index map[string]models.Video, id string) string {
	if v, ok := index[id]; ok && v.Title != "" {
		return v.Title
	}
	return id
}

// weightedCTR returns the impression-weighted CTR of rows within r.
func weightedCTR(rows []models.ChannelDayMetric, r models.DateRange) (ctr float64, impressions int64) {
	var clicks float64
	for i := range rows {
		if !r.Contains(rows[i].Day) {
			continue
		}
		impressions += rows[i].Impressions
		clicks += rows[i].CTR * float64(rows[i].Impressions)
	}
	if impressions == 0 {
		return 0, 0
	}
	return clicks / float64(impressions), impressions
}
