// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
)

const defaultMaxDelay = 30 * time.Second

// RetryPolicy bounds retries of a provider call.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay doubles after every failed attempt.
	BaseDelay time.Duration
	// MaxDelay caps a single wait. Zero means 30s.
	MaxDelay time.Duration

	jitter func(time.Duration) time.Duration
}

// delay returns the wait before retry number attempt (0-based): the
// exponential delay plus up to half of it again as random jitter.
func (p RetryPolicy) delay(attempt int) time.Duration {
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	d := p.BaseDelay
	if d <= 0 {
		return 0
	}
	for i := 0; i < attempt && d < maxDelay; i++ {
		d *= 2
	}
	if d > maxDelay {
		d = maxDelay
	}
	jitter := p.jitter
	if jitter == nil {
		jitter = halfJitter
	}
	return d + jitter(d)
}

func halfJitter(d time.Duration) time.Duration {
	if d <= 1 {
		return 0
	}
	return rand.N(d / 2)
}

// Retry runs fn until it succeeds, fails with a non-retryable error or the
// policy is exhausted. Only NETWORK_ERROR and QUOTA_EXCEEDED failures are
// retried; everything else is returned immediately.
func Retry[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !apperror.IsRetryable(err) {
			return zero, err
		}
		if attempt >= p.MaxRetries {
			return zero, fmt.Errorf("%s: giving up after %d attempts: %w", op, attempt+1, err)
		}

		kind := apperror.Normalize(err).Kind
		metrics.RecordProviderRetry(string(kind))
		wait := p.delay(attempt)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("operation", op).
			Str("kind", string(kind)).
			Int("attempt", attempt+1).
			Int("max_retries", p.MaxRetries).
			Dur("delay", wait).
			Msg("Retrying provider call")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
}
