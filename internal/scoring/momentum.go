// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

// DefaultHitFloor is the minimum 24-hour velocity for a hit.
const DefaultHitFloor = 1000

const (
	hitPercentile = 0.95
	weekSnapshots = 7
)

// MomentumOptions configures ComputeMomentum.
type MomentumOptions struct {
	HitFloor float64
	Now      func() time.Time
}

// ComputeMomentum derives one record per snapshot after the first. Snapshots
// are sorted by day first. Velocities are clamped at zero, so a view-count
// rollback reads as zero velocity.
func ComputeMomentum(videoID string, snapshots []models.CompetitorSnapshot, opts MomentumOptions) []models.MomentumRecord {
	if opts.HitFloor <= 0 {
		opts.HitFloor = DefaultHitFloor
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(snapshots) < 2 {
		return nil
	}

	sorted := make([]models.CompetitorSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day.Before(sorted[j].Day) })

	computedAt := opts.Now().UTC()
	records := make([]models.MomentumRecord, 0, len(sorted)-1)
	history := make([]float64, 0, len(sorted))

	for i := 1; i < len(sorted); i++ {
		cur := float64(sorted[i].ViewCount)
		v24 := math.Max(0, cur-float64(sorted[i-1].ViewCount))

		back := sorted[0]
		if i >= weekSnapshots {
			back = sorted[i-weekSnapshots]
		}
		v7 := math.Max(0, cur-float64(back.ViewCount))

		p95 := stats.Quantile(history, hitPercentile)
		records = append(records, models.MomentumRecord{
			VideoID:       videoID,
			Day:           models.Day(sorted[i].Day),
			Velocity24h:   v24,
			Velocity7d:    v7,
			MomentumScore: momentumScore(v24, history),
			IsHit:         v24 > p95 && v24 > opts.HitFloor,
			ComputedAt:    computedAt,
		})
		history = append(history, v24)
	}
	return records
}

// momentumScore is v24 relative to the mean of prior velocities. With no
// meaningful history any positive velocity scores 1.
func momentumScore(v24 float64, history []float64) float64 {
	if len(history) > 0 {
		if mean := stats.Mean(history); mean > 0 {
			return v24 / mean
		}
	}
	if v24 > 0 {
		return 1
	}
	return 0
}

// Hits returns the records flagged as hits.
func Hits(records []models.MomentumRecord) []models.MomentumRecord {
	var out []models.MomentumRecord
	for _, r := range records {
		if r.IsHit {
			out = append(out, r)
		}
	}
	return out
}
