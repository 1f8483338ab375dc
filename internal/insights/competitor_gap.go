// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/topics"
)

// CompetitorHitGap alerts when a competitor video is a momentum hit inside a
// topic cluster the channel barely covers.
type CompetitorHitGap struct {
	Topics topics.Options
}

type gapHit struct {
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	Day           time.Time `json:"day"`
	Velocity24h   float64   `json:"velocity_24h"`
	MomentumScore float64   `json:"momentum_score"`
}

// Name implements Plugin.
func (CompetitorHitGap) Name() string { return "competitor_hit_gap" }

// Analyze implements Plugin.
func (p CompetitorHitGap) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	hits, err := pc.Data.ListMomentumHits(ctx, pc.Range.Start)
	if err != nil {
		return nil, fmt.Errorf("momentum hits: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}
	// Keep the strongest record per video.
	best := make(map[string]models.MomentumRecord, len(hits))
	for _, h := range hits {
		if cur, ok := best[h.VideoID]; !ok || h.MomentumScore > cur.MomentumScore {
			best[h.VideoID] = h
		}
	}

	owned, err := pc.Data.ListVideos(ctx, pc.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}
	rivals, err := pc.Data.ListCompetitorVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitor videos: %w", err)
	}

	titles := make(map[string]string, len(owned)+len(rivals))
	items := make([]topics.Item, 0, len(owned)+len(rivals))
	for _, v := range owned {
		titles[v.ID] = v.Title
		items = append(items, topics.Item{VideoID: v.ID, Title: v.Title})
	}
	for _, v := range rivals {
		titles[v.ID] = v.Title
		items = append(items, topics.Item{VideoID: v.ID, Title: v.Title, IsCompetitor: true})
	}

	var out []models.Insight
	for _, gap := range topics.FindGaps(ctx, items, p.Topics) {
		var inGap []gapHit
		for _, id := range gap.VideoIDs {
			h, ok := best[id]
			if !ok {
				continue
			}
			inGap = append(inGap, gapHit{
				VideoID:       id,
				Title:         titles[id],
				Day:           h.Day,
				Velocity24h:   h.Velocity24h,
				MomentumScore: h.MomentumScore,
			})
		}
		if len(inGap) == 0 {
			continue
		}
		sort.Slice(inGap, func(i, j int) bool {
			if inGap[i].MomentumScore != inGap[j].MomentumScore {
				return inGap[i].MomentumScore > inGap[j].MomentumScore
			}
			return inGap[i].VideoID < inGap[j].VideoID
		})

		lead := inGap[0]
		out = append(out, newInsight(p.Name(), models.KindAlert, models.SeverityWarning,
			fmt.Sprintf("Competitor hit in uncovered topic: %s", gap.Label),
			fmt.Sprintf("%q is gaining %.0f views/day (%.1fx its usual pace). %s",
				lead.Title, lead.Velocity24h, lead.MomentumScore, gap.Reason),
			map[string]any{
				"topic":               gap.Label,
				"terms":               gap.Terms,
				"cluster_size":        gap.Size,
				"competitor_fraction": gap.CompetitorFraction,
				"hits":                inGap,
			}))
	}
	return out, nil
}
