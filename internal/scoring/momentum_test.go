// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package scoring

import (
	"testing"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
)

func snapshots(counts ...int64) []models.CompetitorSnapshot {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.CompetitorSnapshot, len(counts))
	for i, c := range counts {
		out[i] = models.CompetitorSnapshot{VideoID: "v1", Day: start.AddDate(0, 0, i), ViewCount: c}
	}
	return out
}

func TestComputeMomentumHit(t *testing.T) {
	t.Parallel()

	records := ComputeMomentum("v1", snapshots(1000, 1100, 1200, 2500), MomentumOptions{})
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	day4 := records[2]
	if day4.Velocity24h != 1300 {
		t.Errorf("Velocity24h = %v, want 1300", day4.Velocity24h)
	}
	if !day4.IsHit {
		t.Error("day 4 should be a hit")
	}
	if day4.Velocity7d != 1500 {
		t.Errorf("Velocity7d = %v, want 1500", day4.Velocity7d)
	}
	if day4.MomentumScore != 13 {
		t.Errorf("MomentumScore = %v, want 13", day4.MomentumScore)
	}
	for _, r := range records[:2] {
		if r.IsHit {
			t.Errorf("day %s should not be a hit", r.Day.Format(models.DayLayout))
		}
	}
}

func TestComputeMomentumFloor(t *testing.T) {
	t.Parallel()

	// relative jump but below the absolute floor
	records := ComputeMomentum("v1", snapshots(100, 110, 120, 900), MomentumOptions{})
	if len(Hits(records)) != 0 {
		t.Error("velocity under the floor must not be a hit")
	}

	custom := ComputeMomentum("v1", snapshots(100, 110, 120, 900), MomentumOptions{HitFloor: 500})
	if len(Hits(custom)) != 1 {
		t.Error("custom floor should allow the hit")
	}
}

func TestComputeMomentumSevenDayVelocity(t *testing.T) {
	t.Parallel()

	counts := []int64{0, 10, 20, 30, 40, 50, 60, 70, 80}
	records := ComputeMomentum("v1", snapshots(counts...), MomentumOptions{})
	last := records[len(records)-1]
	// index 8 looks back to index 1
	if last.Velocity7d != 70 {
		t.Errorf("Velocity7d = %v, want 70", last.Velocity7d)
	}
}

func TestComputeMomentumRollbackClamped(t *testing.T) {
	t.Parallel()

	records := ComputeMomentum("v1", snapshots(500, 400, 450), MomentumOptions{})
	if records[0].Velocity24h != 0 {
		t.Errorf("rollback velocity = %v, want 0", records[0].Velocity24h)
	}
	if records[0].MomentumScore != 0 {
		t.Errorf("rollback score = %v, want 0", records[0].MomentumScore)
	}
}

func TestComputeMomentumUnsorted(t *testing.T) {
	t.Parallel()

	s := snapshots(1000, 1100, 1200, 2500)
	s[0], s[3] = s[3], s[0]
	records := ComputeMomentum("v1", s, MomentumOptions{})
	if records[2].Velocity24h != 1300 {
		t.Errorf("snapshots should be sorted by day, got %v", records[2].Velocity24h)
	}
	if ComputeMomentum("v1", s[:1], MomentumOptions{}) != nil {
		t.Error("single snapshot should produce no records")
	}
}
