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
	"github.com/tomtom215/tubelytics/internal/scoring"
)

// QualityRanking ranks videos by quality score weighted by audience
// engagement over the scoring window. A video with no engagement keeps half
// of its score; one at or above the engagement benchmark keeps all of it.
type QualityRanking struct {
	Limit      int
	Benchmarks scoring.Benchmarks
}

type rankedVideo struct {
	Rank             int     `json:"rank"`
	VideoID          string  `json:"video_id"`
	Title            string  `json:"title"`
	QualityScore     float64 `json:"quality_score"`
	EngagementsPerK  float64 `json:"engagements_per_thousand"`
	EngagementWeight float64 `json:"engagement_weight"`
	WeightedScore    float64 `json:"weighted_score"`
}

// Name implements Plugin.
func (QualityRanking) Name() string { return "quality_ranking" }

// Analyze implements Plugin.
func (p QualityRanking) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	scores, err := pc.Data.ListQualityScores(ctx, pc.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("quality scores: %w", err)
	}
	if len(scores) == 0 {
		return nil, nil
	}

	window := models.NewDateRange(pc.Range.End, scoring.QualityWindowDays)
	rows, err := pc.Data.GetChannelVideoMetrics(ctx, pc.ChannelID, window)
	if err != nil {
		return nil, fmt.Errorf("video metrics: %w", err)
	}
	totals := totalsByVideo(rows, window)
	index, err := videoIndex(ctx, pc.Data, pc.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}

	benchmark := p.Benchmarks.EngagementsPerThousand
	if benchmark <= 0 {
		benchmark = scoring.DefaultBenchmarks().EngagementsPerThousand
	}

	ranked := make([]rankedVideo, 0, len(scores))
	for _, s := range scores {
		r := rankedVideo{VideoID: s.VideoID, Title: titleOf(index, s.VideoID), QualityScore: s.Score}
		if t, ok := totals[s.VideoID]; ok && t.Views > 0 {
			r.EngagementsPerK = float64(t.Engagements) / float64(t.Views) * 1000
		}
		r.EngagementWeight = 0.5 + 0.5*math.Min(1, r.EngagementsPerK/benchmark)
		r.WeightedScore = s.Score * r.EngagementWeight
		ranked = append(ranked, r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].WeightedScore != ranked[j].WeightedScore {
			return ranked[i].WeightedScore > ranked[j].WeightedScore
		}
		return ranked[i].VideoID < ranked[j].VideoID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	top := ranked
	if len(top) > limit {
		top = top[:limit]
	}

	lead := ranked[0]
	desc := fmt.Sprintf("%q leads with a weighted score of %.1f (quality %.1f, %.1f engagements per 1000 views).",
		lead.Title, lead.WeightedScore, lead.QualityScore, lead.EngagementsPerK)
	if len(ranked) > 1 {
		last := ranked[len(ranked)-1]
		desc += fmt.Sprintf(" %q ranks last at %.1f.", last.Title, last.WeightedScore)
	}

	return []models.Insight{newInsight(p.Name(), models.KindInsight, models.SeverityInfo,
		fmt.Sprintf("Quality ranking: %s leads", lead.Title), desc,
		map[string]any{
			"window":  window,
			"ranked":  len(ranked),
			"ranking": top,
		})}, nil
}
