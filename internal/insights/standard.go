// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"github.com/tomtom215/tubelytics/internal/scoring"
	"github.com/tomtom215/tubelytics/internal/topics"
)

// Options configures the standard plugin set.
type Options struct {
	Sensitivity float64
	Clusters    int
	Seed        uint64
	Namer       topics.Namer
	Benchmarks  scoring.Benchmarks
}

// Standard returns the standard plugins in execution order.
func Standard(opts Options) []Plugin {
	return []Plugin{
		TopMovers{},
		CTRBottleneck{},
		AnomalyDays{Sensitivity: opts.Sensitivity},
		SleeperVideos{},
		QualityRanking{Benchmarks: opts.Benchmarks},
		CTRDropAlert{},
		CompetitorHitGap{Topics: topics.Options{K: opts.Clusters, Seed: opts.Seed, Namer: opts.Namer}},
		TrendBreak{},
	}
}

// NewStandardRegistry returns a registry holding Standard(opts).
func NewStandardRegistry(opts Options) (*Registry, error) {
	return NewRegistry(Standard(opts)...)
}
