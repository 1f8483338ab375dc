// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/tubelytics/internal/models"
)

// TopMovers reports the videos whose views changed most between the last
// seven days and the seven days before.
type TopMovers struct {
	Limit int
}

type mover struct {
	VideoID     string   `json:"video_id"`
	Title       string   `json:"title"`
	RecentViews int64    `json:"recent_views"`
	PriorViews  int64    `json:"prior_views"`
	Delta       int64    `json:"delta"`
	ChangePct   *float64 `json:"change_pct,omitempty"`
}

// Name implements Plugin.
func (TopMovers) Name() string { return "top_movers" }

// Analyze implements Plugin.
func (p TopMovers) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	recent := models.NewDateRange(pc.Range.End, 7)
	prior := models.NewDateRange(recent.Start.AddDate(0, 0, -1), 7)

	rows, err := pc.Data.GetChannelVideoMetrics(ctx, pc.ChannelID, models.DateRange{Start: prior.Start, End: recent.End})
	if err != nil {
		return nil, fmt.Errorf("video metrics: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	index, err := videoIndex(ctx, pc.Data, pc.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}

	now, before := totalsByVideo(rows, recent), totalsByVideo(rows, prior)
	ids := make(map[string]struct{}, len(now)+len(before))
	for id := range now {
		ids[id] = struct{}{}
	}
	for id := range before {
		ids[id] = struct{}{}
	}

	movers := make([]mover, 0, len(ids))
	for id := range ids {
		m := mover{VideoID: id, Title: titleOf(index, id)}
		if t, ok := now[id]; ok {
			m.RecentViews = t.Views
		}
		if t, ok := before[id]; ok {
			m.PriorViews = t.Views
		}
		m.Delta = m.RecentViews - m.PriorViews
		if m.Delta == 0 {
			continue
		}
		if m.PriorViews > 0 {
			pct := float64(m.Delta) / float64(m.PriorViews) * 100
			m.ChangePct = &pct
		}
		movers = append(movers, m)
	}
	if len(movers) == 0 {
		return nil, nil
	}

	sort.Slice(movers, func(i, j int) bool {
		ai, aj := math.Abs(float64(movers[i].Delta)), math.Abs(float64(movers[j].Delta))
		if ai != aj {
			return ai > aj
		}
		return movers[i].VideoID < movers[j].VideoID
	})
	limit := p.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(movers) > limit {
		movers = movers[:limit]
	}

	lead := movers[0]
	verb := "gained"
	if lead.Delta < 0 {
		verb = "lost"
	}
	return []models.Insight{newInsight(p.Name(), models.KindInsight, models.SeverityInfo,
		fmt.Sprintf("Top mover: %s", lead.Title),
		fmt.Sprintf("%q %s %d views week over week (%d vs %d).",
			lead.Title, verb, abs64(lead.Delta), lead.RecentViews, lead.PriorViews),
		map[string]any{
			"recent_window": recent,
			"prior_window":  prior,
			"movers":        movers,
		})}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
