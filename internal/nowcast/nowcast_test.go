// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package nowcast

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
)

func uniformVideo(id string, days int, perDay float64) VideoViews {
	views := make([]float64, days)
	for i := range views {
		views[i] = perDay
	}
	return VideoViews{VideoID: id, DailyViews: views}
}

func TestFitGrowthCurvesUniform(t *testing.T) {
	t.Parallel()

	population := []VideoViews{
		uniformVideo("a", 28, 10),
		uniformVideo("b", 35, 250),
		uniformVideo("c", 28, 3),
	}
	points := FitGrowthCurves("all", models.BucketMedium, population, time.Now())
	if len(points) != CurveDays {
		t.Fatalf("got %d points, want %d", len(points), CurveDays)
	}
	for _, p := range points {
		want := float64(p.Day) / CurveDays
		if math.Abs(p.MedianPct-want) > 1e-9 {
			t.Errorf("day %d median = %v, want %v", p.Day, p.MedianPct, want)
		}
		if p.SampleSize != 3 {
			t.Errorf("day %d sample size = %d, want 3", p.Day, p.SampleSize)
		}
	}
	if points[CurveDays-1].MedianPct != 1.0 {
		t.Errorf("day 28 median = %v, want 1.0", points[CurveDays-1].MedianPct)
	}
}

func TestFitGrowthCurvesExclusions(t *testing.T) {
	t.Parallel()

	population := []VideoViews{
		uniformVideo("short", 27, 10),
		uniformVideo("zero", 28, 0),
	}
	if points := FitGrowthCurves("all", models.BucketShort, population, time.Now()); points != nil {
		t.Errorf("expected no curve, got %d points", len(points))
	}
}

func testCurve() Curve {
	return NewCurve([]models.GrowthCurvePoint{
		{Day: 2, MedianPct: 0.2, P25Pct: 0.1, P75Pct: 0.4},
		{Day: 7, MedianPct: 0.5, P25Pct: 0.4, P75Pct: 0.6},
	})
}

func TestProject(t *testing.T) {
	t.Parallel()

	p := Project(100, 2, testCurve())
	if !p.Extrapolated {
		t.Fatal("expected extrapolated projection")
	}
	if math.Abs(p.Predicted-250) > 1e-9 {
		t.Errorf("Predicted = %v, want 250", p.Predicted)
	}
	if math.Abs(p.Low-100) > 1e-9 {
		t.Errorf("Low = %v, want 100", p.Low)
	}
	if math.Abs(p.High-600) > 1e-9 {
		t.Errorf("High = %v, want 600", p.High)
	}
}

func TestProjectDegenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		day  int
	}{
		{"day seven", 7},
		{"past target", 12},
		{"day zero", 0},
		{"missing day", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Project(80, tt.day, testCurve())
			if p.Extrapolated || p.Predicted != 80 || p.Low != 80 || p.High != 80 {
				t.Errorf("expected flat projection, got %+v", p)
			}
		})
	}
}

func TestDurationBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int
		want    string
	}{
		{30, models.BucketShort},
		{60, models.BucketShort},
		{61, models.BucketMedium},
		{1200, models.BucketMedium},
		{3600, models.BucketLong},
	}
	for _, tt := range tests {
		if got := DurationBucket(tt.seconds); got != tt.want {
			t.Errorf("DurationBucket(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

type mockCurveStore struct {
	mu       sync.Mutex
	curves   map[string][]models.GrowthCurvePoint
	gets     int
	replaces int
}

func newMockCurveStore() *mockCurveStore {
	return &mockCurveStore{curves: make(map[string][]models.GrowthCurvePoint)}
}

func (m *mockCurveStore) ReplaceGrowthCurve(_ context.Context, cluster, bucket string, points []models.GrowthCurvePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.curves[cacheKey(cluster, bucket)] = points
	m.replaces++
	return nil
}

func (m *mockCurveStore) GetGrowthCurve(_ context.Context, cluster, bucket string) ([]models.GrowthCurvePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.curves[cacheKey(cluster, bucket)], nil
}

func TestEngineRefitAndNowcast(t *testing.T) {
	t.Parallel()

	store := newMockCurveStore()
	engine := NewEngine(store, time.Minute)
	ctx := context.Background()

	points, err := engine.Refit(ctx, "all", models.BucketLong, []VideoViews{uniformVideo("a", 28, 7)})
	if err != nil {
		t.Fatalf("Refit() error = %v", err)
	}
	if len(points) != CurveDays || store.replaces != 1 {
		t.Fatalf("expected stored curve, got %d points / %d replaces", len(points), store.replaces)
	}

	// uniform curve: day 2 = 2/28, day 7 = 7/28, so 2 days of views projects x3.5
	p, err := engine.Nowcast(ctx, "all", models.BucketLong, 14, 2)
	if err != nil {
		t.Fatalf("Nowcast() error = %v", err)
	}
	if math.Abs(p.Predicted-49) > 1e-9 {
		t.Errorf("Predicted = %v, want 49", p.Predicted)
	}
	if store.gets != 0 {
		t.Errorf("refit curve should be served from cache, store read %d times", store.gets)
	}

	if _, err := engine.Refit(ctx, "all", models.BucketShort, nil); err != nil {
		t.Fatalf("empty Refit() error = %v", err)
	}
	if store.replaces != 1 {
		t.Error("empty population must not replace the stored curve")
	}
}
