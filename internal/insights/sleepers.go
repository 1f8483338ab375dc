// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/tubelytics/internal/models"
)

const (
	sleeperMinAgeDays   = 90
	sleeperRecentDays   = 7
	sleeperWindowDays   = 28
	sleeperMinViews     = 100
	sleeperMinRatio     = 2.0
	sleeperDefaultLimit = 5
)

// SleeperVideos finds older videos whose last week outperformed their own
// recent baseline, usually a sign of renewed search or suggested traffic.
type SleeperVideos struct {
	Limit int
}

type sleeper struct {
	VideoID       string  `json:"video_id"`
	Title         string  `json:"title"`
	AgeDays       int     `json:"age_days"`
	RecentViews   int64   `json:"recent_views"`
	BaselineViews float64 `json:"baseline_weekly_views"`
	Ratio         float64 `json:"ratio"`
}

// Name implements Plugin.
func (SleeperVideos) Name() string { return "sleeper_videos" }

// Analyze implements Plugin.
func (p SleeperVideos) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	index, err := videoIndex(ctx, pc.Data, pc.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}

	window := models.NewDateRange(pc.Range.End, sleeperWindowDays)
	recent := models.NewDateRange(pc.Range.End, sleeperRecentDays)
	baseline := models.DateRange{Start: window.Start, End: recent.Start.AddDate(0, 0, -1)}

	rows, err := pc.Data.GetChannelVideoMetrics(ctx, pc.ChannelID, window)
	if err != nil {
		return nil, fmt.Errorf("video metrics: %w", err)
	}
	now, before := totalsByVideo(rows, recent), totalsByVideo(rows, baseline)

	var found []sleeper
	for id, t := range now {
		v, ok := index[id]
		if !ok {
			continue
		}
		age := v.AgeDays(pc.Range.End)
		if age < sleeperMinAgeDays || t.Views < sleeperMinViews {
			continue
		}
		var weekly float64
		if b, ok := before[id]; ok {
			weekly = float64(b.Views) / float64(baseline.Days()) * sleeperRecentDays
		}
		if weekly <= 0 {
			continue
		}
		ratio := float64(t.Views) / weekly
		if ratio < sleeperMinRatio {
			continue
		}
		found = append(found, sleeper{
			VideoID:       id,
			Title:         titleOf(index, id),
			AgeDays:       age,
			RecentViews:   t.Views,
			BaselineViews: weekly,
			Ratio:         ratio,
		})
	}
	if len(found) == 0 {
		return nil, nil
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Ratio != found[j].Ratio {
			return found[i].Ratio > found[j].Ratio
		}
		return found[i].VideoID < found[j].VideoID
	})
	limit := p.Limit
	if limit <= 0 {
		limit = sleeperDefaultLimit
	}
	if len(found) > limit {
		found = found[:limit]
	}

	out := make([]models.Insight, 0, len(found))
	for _, s := range found {
		out = append(out, newInsight(p.Name(), models.KindInsight, models.SeverityInfo,
			fmt.Sprintf("Sleeper video waking up: %s", s.Title),
			fmt.Sprintf("%q is %d days old and got %d views this week, %.1fx its recent weekly average.",
				s.Title, s.AgeDays, s.RecentViews, s.Ratio),
			s))
	}
	return out, nil
}
