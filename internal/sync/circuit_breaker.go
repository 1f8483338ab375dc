// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/config"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// CircuitBreakerProvider wraps a DataProvider with a circuit breaker so a
// failing provider is not hammered by every stage of every run.
//
// The breaker opens after BreakerFailures consecutive failures and probes
// again after BreakerTimeout. Validation errors (unknown channel, bad range)
// count as successes: they say nothing about provider health. Calls
// rejected while open fail with NETWORK_ERROR wrapping gobreaker.ErrOpenState.
type CircuitBreakerProvider struct {
	provider DataProvider
	cb       *gobreaker.CircuitBreaker[any]
	name     string
}

// NewCircuitBreakerProvider wraps provider using cfg's breaker settings.
func NewCircuitBreakerProvider(provider DataProvider, cfg *config.YouTubeConfig) *CircuitBreakerProvider {
	cbName := "youtube-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	threshold := cfg.BreakerFailures
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Str("breaker", cbName).
					Msg("Opening circuit breaker")
			}
			return trip
		},

		IsSuccessful: func(err error) bool {
			return err == nil || apperror.KindOf(err) == apperror.KindValidation
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerProvider{provider: provider, cb: cb, name: cbName}
}

// State returns the breaker's current state.
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

func (p *CircuitBreakerProvider) execute(op string, fn func() (any, error)) (any, error) {
	result, err := p.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
			return nil, &apperror.Error{Kind: apperror.KindNetwork, Op: op, Message: "circuit breaker open", Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(float64(p.cb.Counts().ConsecutiveFailures))
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result. A nil result yields the zero T.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil || result == nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GetChannel implements DataProvider.
func (p *CircuitBreakerProvider) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	return castResult[*models.Channel](p.execute("get channel", func() (any, error) {
		return p.provider.GetChannel(ctx, channelID)
	}))
}

// ListVideos implements DataProvider.
func (p *CircuitBreakerProvider) ListVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error) {
	return castResult[[]models.Video](p.execute("list videos", func() (any, error) {
		return p.provider.ListVideos(ctx, channelID, maxResults)
	}))
}

// GetChannelDailyMetrics implements DataProvider.
func (p *CircuitBreakerProvider) GetChannelDailyMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.MetricValue, error) {
	return castResult[[]models.MetricValue](p.execute("channel daily metrics", func() (any, error) {
		return p.provider.GetChannelDailyMetrics(ctx, channelID, r)
	}))
}

// GetVideoDailyMetrics implements DataProvider.
func (p *CircuitBreakerProvider) GetVideoDailyMetrics(ctx context.Context, videoIDs []string, r models.DateRange) ([]models.MetricValue, error) {
	return castResult[[]models.MetricValue](p.execute("video daily metrics", func() (any, error) {
		return p.provider.GetVideoDailyMetrics(ctx, videoIDs, r)
	}))
}

// GetPublicChannel implements DataProvider.
func (p *CircuitBreakerProvider) GetPublicChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	return castResult[*models.Channel](p.execute("get public channel", func() (any, error) {
		return p.provider.GetPublicChannel(ctx, channelID)
	}))
}

// GetPublicVideos implements DataProvider.
func (p *CircuitBreakerProvider) GetPublicVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error) {
	return castResult[[]models.Video](p.execute("list public videos", func() (any, error) {
		return p.provider.GetPublicVideos(ctx, channelID, maxResults)
	}))
}
