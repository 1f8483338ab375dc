// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"fmt"

	"github.com/tomtom215/tubelytics/internal/anomaly"
	"github.com/tomtom215/tubelytics/internal/models"
)

const trendBreakMinPoints = 14

// TrendBreak reports a structural shift in daily channel views.
type TrendBreak struct{}

// Name implements Plugin.
func (TrendBreak) Name() string { return "trend_break" }

// Analyze implements Plugin.
func (p TrendBreak) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	rows, err := pc.Data.GetChannelMetrics(ctx, pc.ChannelID, pc.Range)
	if err != nil {
		return nil, fmt.Errorf("channel metrics: %w", err)
	}
	if len(rows) < trendBreakMinPoints {
		return nil, nil
	}

	tb := anomaly.DetectTrendBreak(channelSeries(rows, views))
	if !tb.Found {
		return nil, nil
	}

	severity := models.SeverityInfo
	if tb.Direction == "down" {
		severity = models.SeverityWarning
	}
	return []models.Insight{newInsight(p.Name(), models.KindInsight, severity,
		fmt.Sprintf("Daily views trend shifted %s", tb.Direction),
		fmt.Sprintf("Average daily views moved from %.0f to %.0f after %s.",
			tb.BeforeMean, tb.AfterMean, tb.Date.Format(models.DayLayout)),
		tb)}, nil
}
