// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTokenBucketNeverExceedsCapacity(t *testing.T) {
	b := NewTokenBucket(5, 0.001)

	var admitted atomic.Int32
	var wg gosync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryAcquire() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 5 {
		t.Errorf("admitted %d calls, want 5", got)
	}
	if b.Capacity() != 5 {
		t.Errorf("Capacity() = %d, want 5", b.Capacity())
	}
}

func TestTokenBucketAcquireWaitsForRefill(t *testing.T) {
	b := NewTokenBucket(1, 50) // one token every 20ms

	ctx := context.Background()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	start := time.Now()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if waited := time.Since(start); waited < 10*time.Millisecond {
		t.Errorf("second Acquire() returned after %v, want to wait for refill", waited)
	}
}

func TestTokenBucketAcquireCancelled(t *testing.T) {
	b := NewTokenBucket(1, 0.001)
	if !b.TryAcquire() {
		t.Fatal("TryAcquire() on a full bucket = false")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Acquire(ctx)
	if err == nil {
		t.Fatal("Acquire() on an empty bucket should fail when the context expires")
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want a deadline error", err)
	}
}

func TestNewTokenBucketClampsCapacity(t *testing.T) {
	if got := NewTokenBucket(0, 1).Capacity(); got != 1 {
		t.Errorf("Capacity() = %d, want 1", got)
	}
}
