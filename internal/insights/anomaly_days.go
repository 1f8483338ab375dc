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

// AnomalyDays reports days whose channel views deviate sharply from the
// preceding two weeks.
type AnomalyDays struct {
	Sensitivity float64
}

// Name implements Plugin.
func (AnomalyDays) Name() string { return "anomaly_days" }

// Analyze implements Plugin.
func (p AnomalyDays) Analyze(ctx context.Context, pc *Context) ([]models.Insight, error) {
	// Fetch a full window before the range so its first days can be scored.
	fetch := models.DateRange{Start: pc.Range.Start.AddDate(0, 0, -anomaly.WindowSize), End: pc.Range.End}
	rows, err := pc.Data.GetChannelMetrics(ctx, pc.ChannelID, fetch)
	if err != nil {
		return nil, fmt.Errorf("channel metrics: %w", err)
	}

	var out []models.Insight
	for _, a := range anomaly.DetectSpikes(channelSeries(rows, views), p.Sensitivity) {
		if !pc.Range.Contains(a.Date) {
			continue
		}
		day := a.Date.Format(models.DayLayout)
		title := fmt.Sprintf("Views spike on %s", day)
		if a.Direction == anomaly.DirectionDrop {
			title = fmt.Sprintf("Views drop on %s", day)
		}
		out = append(out, newInsight(p.Name(), models.KindInsight, a.Severity, title,
			fmt.Sprintf("%.0f views against an expected %.0f (z=%.1f).", a.Value, a.Expected, a.ZScore),
			a))
	}
	return out, nil
}
