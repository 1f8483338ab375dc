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
	"github.com/tomtom215/tubelytics/internal/stats"
)

const (
	// bottleneckMinImpressions excludes videos with too few impressions to judge.
	bottleneckMinImpressions = 1000
	// bottleneckRatio is the fraction of the channel CTR below which a video is a bottleneck.
	bottleneckRatio     = 0.7
	bottleneckMinVideos = 3
)

const (
	ctrRecentDays             = 7
	ctrBaselineDays           = 21
	ctrDropWarning            = 0.2
	ctrDropCritical           = 0.4
	ctrMinBaselineImpressions = 1000
)

// CTRBottleneck flags videos that get plenty of impressions but convert them
// into views far below the channel rate.
type CTRBottleneck struct {
	Limit int
}

// Name implements Plugin.
func (CTRBottleneck) Name() string { return "ctr_bottleneck" }

// Analyze implements Plugin.
func (p CTRBottleneck) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	rows, err := pc.Data.GetChannelVideoMetrics(ctx, pc.ChannelID, pc.Range)
	if err != nil {
		return nil, fmt.Errorf("video metrics: %w", err)
	}

	var candidates []*videoTotals
	for _, t := range totalsByVideo(rows, pc.Range) {
		if t.Impressions >= bottleneckMinImpressions {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) < bottleneckMinVideos {
		return nil, nil
	}

	var clicks float64
	var impressions int64
	reach := make([]float64, len(candidates))
	for i, t := range candidates {
		clicks += t.Clicks
		impressions += t.Impressions
		reach[i] = float64(t.Impressions)
	}
	channelCTR := clicks / float64(impressions)
	medianReach := stats.Median(reach)
	if channelCTR <= 0 {
		return nil, nil
	}

	var flagged []*videoTotals
	for _, t := range candidates {
		if float64(t.Impressions) >= medianReach && t.CTR() < bottleneckRatio*channelCTR {
			flagged = append(flagged, t)
		}
	}
	if len(flagged) == 0 {
		return nil, nil
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].Impressions != flagged[j].Impressions {
			return flagged[i].Impressions > flagged[j].Impressions
		}
		return flagged[i].VideoID < flagged[j].VideoID
	})
	limit := p.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(flagged) > limit {
		flagged = flagged[:limit]
	}

	index, err := videoIndex(ctx, pc.Data, pc.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}

	out := make([]models.Insight, 0, len(flagged))
	for _, t := range flagged {
		title := titleOf(index, t.VideoID)
		out = append(out, newInsight(p.Name(), models.KindInsight, models.SeverityWarning,
			fmt.Sprintf("Low click-through on %s", title),
			fmt.Sprintf("%q reached %d impressions but converted at %.2f against a channel rate of %.2f. "+
				"The thumbnail or title is the likely bottleneck.", title, t.Impressions, t.CTR(), channelCTR),
			map[string]any{
				"video_id":     t.VideoID,
				"impressions":  t.Impressions,
				"views":        t.Views,
				"ctr":          t.CTR(),
				"channel_ctr":  channelCTR,
				"median_reach": medianReach,
				"window":       pc.Range,
			}))
	}
	return out, nil
}

// CTRDropAlert compares the last week's channel CTR with the three weeks
// before and raises an alert with a remediation playbook on a sharp drop.
type CTRDropAlert struct{}

// ctrPlaybook is attached to every CTR drop alert.
var ctrPlaybook = []string{
	"Check which recent uploads have the lowest CTR and A/B test new thumbnails on them.",
	"Compare recent titles against the top performers for length and hook placement.",
	"Review traffic sources: a shift to browse or suggested traffic often lowers CTR.",
	"Confirm impressions did not spike from a new audience that is less familiar with the channel.",
	"Re-check after 72 hours before making further changes.",
}

// Name implements Plugin.
func (CTRDropAlert) Name() string { return "ctr_drop_alert" }

// Analyze implements Plugin.
func (p CTRDropAlert) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	recent := models.NewDateRange(pc.Range.End, ctrRecentDays)
	baseline := models.NewDateRange(recent.Start.AddDate(0, 0, -1), ctrBaselineDays)

	rows, err := pc.Data.GetChannelMetrics(ctx, pc.ChannelID, models.DateRange{Start: baseline.Start, End: recent.End})
	if err != nil {
		return nil, fmt.Errorf("channel metrics: %w", err)
	}

	baseCTR, baseImpr := weightedCTR(rows, baseline)
	recentCTR, recentImpr := weightedCTR(rows, recent)
	if baseImpr < ctrMinBaselineImpressions || recentImpr == 0 || baseCTR <= 0 {
		return nil, nil
	}

	drop := (baseCTR - recentCTR) / baseCTR
	if drop < ctrDropWarning {
		return nil, nil
	}
	severity := models.SeverityWarning
	if drop >= ctrDropCritical {
		severity = models.SeverityCritical
	}

	return []models.Insight{newInsight(p.Name(), models.KindAlert, severity,
		fmt.Sprintf("Click-through rate down %.0f%%", drop*100),
		fmt.Sprintf("Channel CTR over the last %d days is %.2f, down from %.2f over the prior %d days.",
			ctrRecentDays, recentCTR, baseCTR, ctrBaselineDays),
		map[string]any{
			"recent_ctr":           recentCTR,
			"baseline_ctr":         baseCTR,
			"drop_pct":             drop * 100,
			"recent_impressions":   recentImpr,
			"baseline_impressions": baseImpr,
			"recent_window":        recent,
			"baseline_window":      baseline,
			"playbook":             ctrPlaybook,
		})}, nil
}
