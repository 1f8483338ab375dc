// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package nowcast

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// CurveStore persists growth curves. ReplaceGrowthCurve deletes every point
// of (cluster, bucket) before inserting the new ones.
type CurveStore interface {
	ReplaceGrowthCurve(ctx context.Context, cluster, bucket string, points []models.GrowthCurvePoint) error
	GetGrowthCurve(ctx context.Context, cluster, bucket string) ([]models.GrowthCurvePoint, error)
}

// Engine refits and serves growth curves, caching lookups in memory.
type Engine struct {
	store CurveStore
	cache *cache.Cache
	now   func() time.Time
}

// NewEngine creates an engine whose cached curves expire after ttl.
func NewEngine(store CurveStore, ttl time.Duration) *Engine {
	return &Engine{
		store: store,
		cache: cache.New(ttl, ttl*2),
		now:   time.Now,
	}
}

func cacheKey(cluster, bucket string) string {
	return cluster + "|" + bucket
}

// Refit fits and stores the curve for (cluster, bucket). When no video
// qualifies the stored curve is left untouched and nil is returned.
func (e *Engine) Refit(ctx context.Context, cluster, bucket string, population []VideoViews) ([]models.GrowthCurvePoint, error) {
	points := FitGrowthCurves(cluster, bucket, population, e.now().UTC())
	if len(points) == 0 {
		logging.Ctx(ctx).Debug().
			Str("cluster", cluster).
			Str("bucket", bucket).
			Int("population", len(population)).
			Msg("No videos with 28 days of history, growth curve not refit")
		return nil, nil
	}

	if err := e.store.ReplaceGrowthCurve(ctx, cluster, bucket, points); err != nil {
		return nil, fmt.Errorf("replace growth curve %s/%s: %w", cluster, bucket, err)
	}
	e.cache.Set(cacheKey(cluster, bucket), NewCurve(points), cache.DefaultExpiration)
	return points, nil
}

// Curve returns the stored curve for (cluster, bucket).
func (e *Engine) Curve(ctx context.Context, cluster, bucket string) (Curve, error) {
	key := cacheKey(cluster, bucket)
	if cached, found := e.cache.Get(key); found {
		metrics.GrowthCurveCacheHits.Inc()
		return cached.(Curve), nil
	}
	metrics.GrowthCurveCacheMisses.Inc()

	points, err := e.store.GetGrowthCurve(ctx, cluster, bucket)
	if err != nil {
		return nil, fmt.Errorf("get growth curve %s/%s: %w", cluster, bucket, err)
	}
	curve := NewCurve(points)
	e.cache.Set(key, curve, cache.DefaultExpiration)
	return curve, nil
}

// Nowcast projects a video's day-7 views from its current cumulative views.
func (e *Engine) Nowcast(ctx context.Context, cluster, bucket string, current float64, day int) (Projection, error) {
	curve, err := e.Curve(ctx, cluster, bucket)
	if err != nil {
		return Projection{}, err
	}
	return Project(current, day, curve), nil
}
