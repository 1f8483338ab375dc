// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

// Package nowcast fits empirical growth curves over a video population and
// projects early-life cumulative views to day 7.
//
// A growth curve holds, for each day 1..28 after publish, the median, p25 and
// p75 of cumulative views normalized by the day-28 total. Curves are keyed by
// a cluster label and a duration bucket.
package nowcast

import (
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

const (
	// CurveDays is the length of a fitted curve.
	CurveDays = 28
	// TargetDay is the day projections are made for.
	TargetDay = 7
)

// Duration bucket boundaries in seconds.
const (
	shortMaxSeconds  = 60
	mediumMaxSeconds = 20 * 60
)

// DurationBucket maps a video length to its curve bucket.
func DurationBucket(seconds int) string {
	switch {
	case seconds <= shortMaxSeconds:
		return models.BucketShort
	case seconds <= mediumMaxSeconds:
		return models.BucketMedium
	default:
		return models.BucketLong
	}
}

// VideoViews is the per-day view counts of one video starting at publish day.
type VideoViews struct {
	VideoID    string
	DailyViews []float64
}

// FitGrowthCurves builds the curve for (cluster, bucket). Videos with fewer
// than 28 days or a zero day-28 total are ignored. An empty result means no
// video qualified.
func FitGrowthCurves(cluster, bucket string, population []VideoViews, fittedAt time.Time) []models.GrowthCurvePoint {
	normalized := make([][]float64, 0, len(population))
	for _, v := range population {
		if len(v.DailyViews) < CurveDays {
			continue
		}
		cumulative := make([]float64, CurveDays)
		var running float64
		for d := 0; d < CurveDays; d++ {
			running += v.DailyViews[d]
			cumulative[d] = running
		}
		total := cumulative[CurveDays-1]
		if total == 0 {
			continue
		}
		for d := range cumulative {
			cumulative[d] /= total
		}
		normalized = append(normalized, cumulative)
	}
	if len(normalized) == 0 {
		return nil
	}

	points := make([]models.GrowthCurvePoint, 0, CurveDays)
	column := make([]float64, len(normalized))
	for d := 0; d < CurveDays; d++ {
		for i, curve := range normalized {
			column[i] = curve[d]
		}
		points = append(points, models.GrowthCurvePoint{
			Cluster:        cluster,
			DurationBucket: bucket,
			Day:            d + 1,
			MedianPct:      stats.Median(column),
			P25Pct:         stats.Quantile(column, 0.25),
			P75Pct:         stats.Quantile(column, 0.75),
			SampleSize:     len(normalized),
			FittedAt:       fittedAt,
		})
	}
	return points
}

// Curve indexes growth curve points by day.
type Curve map[int]models.GrowthCurvePoint

// NewCurve indexes points by day.
func NewCurve(points []models.GrowthCurvePoint) Curve {
	c := make(Curve, len(points))
	for _, p := range points {
		c[p.Day] = p
	}
	return c
}

// Projection is a day-7 estimate with a conservative/optimistic range.
type Projection struct {
	Current      float64 `json:"current"`
	Day          int     `json:"day"`
	Predicted    float64 `json:"predicted"`
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	Extrapolated bool    `json:"extrapolated"`
}

// Project estimates cumulative views at day 7 from current views at day.
// Outside 1 <= day < 7, or when the curve lacks the needed days, the
// projection is the current value with a zero-width range.
func Project(current float64, day int, curve Curve) Projection {
	flat := Projection{Current: current, Day: day, Predicted: current, Low: current, High: current}
	if day < 1 || day >= TargetDay {
		return flat
	}
	at, ok := curve[day]
	if !ok {
		return flat
	}
	target, ok := curve[TargetDay]
	if !ok || at.MedianPct == 0 {
		return flat
	}

	p := Projection{
		Current:      current,
		Day:          day,
		Predicted:    current / at.MedianPct * target.MedianPct,
		Extrapolated: true,
	}
	p.Low, p.High = p.Predicted, p.Predicted
	if at.P75Pct > 0 {
		p.Low = current / at.P75Pct * target.P25Pct
	}
	if at.P25Pct > 0 {
		p.High = current / at.P25Pct * target.P75Pct
	}
	return p
}
