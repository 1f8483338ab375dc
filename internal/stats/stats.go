// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

// Package stats provides the numeric primitives used by the forecasting,
// scoring and detection packages.
//
// All functions are pure. Empty-input behavior differs per function and is
// relied on by callers: Mean returns NaN, Median and Quantile return 0.
//
// Error metrics treat a zero denominator term as zero error rather than as
// infinity, so MAPE and SMAPE are always finite.
package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrLengthMismatch is returned when actual and predicted differ in length.
var ErrLengthMismatch = errors.New("stats: actual and predicted lengths differ")

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

// Mean returns the arithmetic mean, or NaN for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return Sum(values) / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for empty input.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// MAE returns the mean absolute error.
func MAE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, ErrLengthMismatch
	}
	errs := make([]float64, len(actual))
	for i := range actual {
		errs[i] = math.Abs(actual[i] - predicted[i])
	}
	return Mean(errs), nil
}

// MAPE returns the mean absolute percentage error (0-100 scale).
// A zero actual contributes zero error.
func MAPE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, ErrLengthMismatch
	}
	errs := make([]float64, len(actual))
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		errs[i] = math.Abs((actual[i]-predicted[i])/actual[i]) * 100
	}
	return Mean(errs), nil
}

// SMAPE returns the symmetric mean absolute percentage error (0-200 scale).
// A term whose mean magnitude is zero contributes zero error.
func SMAPE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, ErrLengthMismatch
	}
	errs := make([]float64, len(actual))
	for i := range actual {
		denom := (math.Abs(actual[i]) + math.Abs(predicted[i])) / 2
		if denom == 0 {
			continue
		}
		errs[i] = math.Abs(actual[i]-predicted[i]) / denom * 100
	}
	return Mean(errs), nil
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear interpolation
// between order statistics. Empty input returns 0.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[n-1]
	}

	pos := float64(n-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median returns the middle value, averaging the two middle values for even
// counts. Empty input returns 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// LinearRegression fits y = intercept + slope*x by least squares with
// x = 0..n-1. Fewer than two points yield a flat line through the mean.
func LinearRegression(ys []float64) (slope, intercept float64) {
	n := len(ys)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, ys[0]
	}
	xMean := float64(n-1) / 2
	yMean := Mean(ys)
	var num, den float64
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	slope = num / den
	return slope, yMean - slope*xMean
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
