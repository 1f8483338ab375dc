// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

// Package anomaly detects spikes, drops and structural breaks in daily series.
//
// DetectSpikes uses a rolling z-score over the preceding 14 points.
// DetectTrendBreak locates the point of maximum absolute CUSUM deviation and
// reports it only when the before/after means differ by more than one global
// standard deviation.
package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

const (
	// WindowSize is the number of preceding points used for each z-score.
	WindowSize = 14
	// DefaultSensitivity is the default |z| threshold.
	DefaultSensitivity = 2.5
	// CriticalThreshold is the |z| above which an anomaly is critical.
	CriticalThreshold = 3.5

	minStdDev = 1e-9
)

// Directions.
const (
	DirectionSpike = "spike"
	DirectionDrop  = "drop"
)

// Anomaly is a flagged point.
type Anomaly struct {
	Index     int       `json:"index"`
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	Expected  float64   `json:"expected"`
	ZScore    float64   `json:"z_score"`
	Severity  string    `json:"severity"`
	Direction string    `json:"direction"`
}

// DetectSpikes flags points whose z-score against the preceding 14 points
// exceeds sensitivity. A non-positive sensitivity uses DefaultSensitivity.
// Windows with near-zero variance are skipped.
func DetectSpikes(series models.Series, sensitivity float64) []Anomaly {
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	values := series.Values()

	var out []Anomaly
	for i := WindowSize; i < len(values); i++ {
		window := values[i-WindowSize : i]
		std := stats.StdDev(window)
		if std < minStdDev {
			continue
		}
		mean := stats.Mean(window)
		z := (values[i] - mean) / std
		if math.Abs(z) <= sensitivity {
			continue
		}

		a := Anomaly{
			Index:     i,
			Date:      series[i].Date,
			Value:     values[i],
			Expected:  mean,
			ZScore:    z,
			Severity:  models.SeverityWarning,
			Direction: DirectionSpike,
		}
		if math.Abs(z) > CriticalThreshold {
			a.Severity = models.SeverityCritical
		}
		if z < 0 {
			a.Direction = DirectionDrop
		}
		out = append(out, a)
	}
	return out
}

// TrendBreak describes the outcome of DetectTrendBreak.
type TrendBreak struct {
	Found      bool      `json:"found"`
	Index      int       `json:"index"`
	Date       time.Time `json:"date"`
	BeforeMean float64   `json:"before_mean"`
	AfterMean  float64   `json:"after_mean"`
	Magnitude  float64   `json:"magnitude"`
	Direction  string    `json:"direction,omitempty"`
	Reason     string    `json:"reason"`
}

// DetectTrendBreak finds the most likely level shift. The break index is the
// last point of the "before" segment.
func DetectTrendBreak(series models.Series) TrendBreak {
	values := series.Values()
	if len(values) < 2 {
		return TrendBreak{Reason: "not enough data"}
	}

	mean := stats.Mean(values)
	std := stats.StdDev(values)
	if std == 0 {
		return TrendBreak{Reason: "series is constant"}
	}

	var cusum, maxAbs float64
	idx := 0
	for i, v := range values {
		cusum += v - mean
		if math.Abs(cusum) > maxAbs {
			maxAbs = math.Abs(cusum)
			idx = i
		}
	}

	if idx >= len(values)-1 {
		return TrendBreak{Index: idx, Reason: "no break found"}
	}

	before := stats.Mean(values[:idx+1])
	after := stats.Mean(values[idx+1:])
	tb := TrendBreak{
		Index:      idx,
		Date:       series[idx].Date,
		BeforeMean: before,
		AfterMean:  after,
		Magnitude:  math.Abs(after - before),
	}
	if tb.Magnitude <= std {
		tb.Reason = "no break found"
		return tb
	}

	tb.Found = true
	tb.Direction = "up"
	if after < before {
		tb.Direction = "down"
	}
	tb.Reason = fmt.Sprintf("mean shifted %s from %.1f to %.1f after %s (%.1f std)",
		tb.Direction, before, after, tb.Date.Format(models.DayLayout), tb.Magnitude/std)
	return tb
}
