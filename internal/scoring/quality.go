// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package scoring

import (
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tubelytics/internal/models"
)

// QualityWindowDays is the trailing window scored.
const QualityWindowDays = 28

// Component weights.
const (
	weightVelocity   = 0.4
	weightEfficiency = 0.4
	weightConversion = 0.2
)

// Benchmarks are the values that score 100 on each component.
type Benchmarks struct {
	// ViewsPerDay is the velocity benchmark.
	ViewsPerDay float64 `koanf:"views_per_day" json:"views_per_day"`
	// MinutesPerView is the efficiency benchmark.
	MinutesPerView float64 `koanf:"minutes_per_view" json:"minutes_per_view"`
	// EngagementsPerThousand is the conversion benchmark.
	EngagementsPerThousand float64 `koanf:"engagements_per_thousand" json:"engagements_per_thousand"`
}

// DefaultBenchmarks returns 1000 views/day, 4 minutes/view and 50
// engagements per 1000 views.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{ViewsPerDay: 1000, MinutesPerView: 4, EngagementsPerThousand: 50}
}

// ScoreComponent is one weighted part of a quality score.
type ScoreComponent struct {
	Raw          float64 `json:"raw"`
	Benchmark    float64 `json:"benchmark"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// QualityExplanation is serialized into QualityScore.Explanation.
type QualityExplanation struct {
	WindowStart      time.Time      `json:"window_start"`
	WindowEnd        time.Time      `json:"window_end"`
	ObservedDays     int            `json:"observed_days"`
	ExposureDays     int            `json:"exposure_days"`
	Views            int64          `json:"views"`
	WatchMinutes     float64        `json:"watch_minutes"`
	Engagements      int64          `json:"engagements"`
	Velocity         ScoreComponent `json:"velocity"`
	Efficiency       ScoreComponent `json:"efficiency"`
	Conversion       ScoreComponent `json:"conversion"`
	TopContributor   string         `json:"top_contributor"`
	WeakestComponent string         `json:"weakest_component"`
}

// ComputeQuality scores a video over the 28 days ending at asOf. Velocity
// is views per day of exposure: the window length, or fewer days for a video
// published inside the window. Days without a metrics row count as zero
// views.
func ComputeQuality(video models.Video, metrics []models.VideoDayMetric, asOf time.Time, b Benchmarks) (models.QualityScore, error) {
	end := models.Day(asOf)
	window := models.NewDateRange(end, QualityWindowDays)

	exp := QualityExplanation{
		WindowStart:  window.Start,
		WindowEnd:    window.End,
		ExposureDays: exposureDays(video, asOf),
	}
	for i := range metrics {
		m := &metrics[i]
		if !window.Contains(m.Day) {
			continue
		}
		exp.ObservedDays++
		exp.Views += m.Views
		exp.WatchMinutes += m.WatchMinutes
		exp.Engagements += m.Engagements()
	}

	var velocity, efficiency, conversion float64
	if exp.ObservedDays > 0 {
		velocity = float64(exp.Views) / float64(exp.ExposureDays)
	}
	if exp.Views > 0 {
		efficiency = exp.WatchMinutes / float64(exp.Views)
		conversion = float64(exp.Engagements) / float64(exp.Views) * 1000
	}

	exp.Velocity = component(velocity, b.ViewsPerDay, weightVelocity)
	exp.Efficiency = component(efficiency, b.MinutesPerView, weightEfficiency)
	exp.Conversion = component(conversion, b.EngagementsPerThousand, weightConversion)
	exp.TopContributor, exp.WeakestComponent = rankComponents(exp)

	blob, err := json.Marshal(exp)
	if err != nil {
		return models.QualityScore{}, err
	}

	return models.QualityScore{
		VideoID:         video.ID,
		Score:           exp.Velocity.Contribution + exp.Efficiency.Contribution + exp.Conversion.Contribution,
		VelocityScore:   exp.Velocity.Score,
		EfficiencyScore: exp.Efficiency.Score,
		ConversionScore: exp.Conversion.Score,
		Explanation:     blob,
		ComputedAt:      time.Now().UTC(),
	}, nil
}

// exposureDays is how many window days the video was public, at least one.
// An unknown publish date counts as the full window.
func exposureDays(v models.Video, asOf time.Time) int {
	if v.PublishedAt.IsZero() {
		return QualityWindowDays
	}
	days := v.AgeDays(asOf) + 1
	switch {
	case days < 1:
		return 1
	case days > QualityWindowDays:
		return QualityWindowDays
	}
	return days
}

// Normalize maps value onto 0-100 against benchmark.
func Normalize(value, benchmark float64) float64 {
	if benchmark <= 0 {
		return 0
	}
	return math.Min(100, value/benchmark*100)
}

func component(raw, benchmark, weight float64) ScoreComponent {
	score := Normalize(raw, benchmark)
	return ScoreComponent{
		Raw:          raw,
		Benchmark:    benchmark,
		Score:        score,
		Weight:       weight,
		Contribution: score * weight,
	}
}

// rankComponents returns the largest contributor and the lowest normalized
// component.
func rankComponents(exp QualityExplanation) (top, weakest string) {
	named := []struct {
		name string
		c    ScoreComponent
	}{
		{"velocity", exp.Velocity},
		{"efficiency", exp.Efficiency},
		{"conversion", exp.Conversion},
	}
	top, weakest = named[0].name, named[0].name
	topVal, weakVal := named[0].c.Contribution, named[0].c.Score
	for _, n := range named[1:] {
		if n.c.Contribution > topVal {
			top, topVal = n.name, n.c.Contribution
		}
		if n.c.Score < weakVal {
			weakest, weakVal = n.name, n.c.Score
		}
	}
	return top, weakest
}
