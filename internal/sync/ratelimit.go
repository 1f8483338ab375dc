// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/tubelytics/internal/metrics"
)

// TokenBucket limits provider calls to a burst of capacity tokens refilled
// at a fixed rate. Waiting never holds a lock.
type TokenBucket struct {
	limiter  *rate.Limiter
	capacity int
}

// NewTokenBucket creates a full bucket. refillPerSecond <= 0 disables
// refilling, so only the initial burst is ever admitted.
func NewTokenBucket(capacity int, refillPerSecond float64) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	limit := rate.Limit(refillPerSecond)
	if refillPerSecond <= 0 {
		limit = 0
	}
	return &TokenBucket{
		limiter:  rate.NewLimiter(limit, capacity),
		capacity: capacity,
	}
}

// Acquire blocks until a token is available or ctx is done.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	if b.limiter.Allow() {
		return nil
	}
	start := time.Now()
	err := b.limiter.Wait(ctx)
	metrics.RecordRateLimitWait(time.Since(start))
	return err
}

// TryAcquire takes a token if one is available now.
func (b *TokenBucket) TryAcquire() bool {
	return b.limiter.Allow()
}

// Capacity returns the burst size.
func (b *TokenBucket) Capacity() int {
	return b.capacity
}
