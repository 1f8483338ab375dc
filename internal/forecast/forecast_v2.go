// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"math"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

const (
	v2Window       = 28
	v2MomentumDays = 3
	v2MomentumMin  = 0.5
	v2MomentumMax  = 2.0
	v2Damping      = 0.9
)

// ForecastV2 combines a least-squares trend over the last 28 days with a
// day-of-week factor and a momentum ratio (last 3 days vs last 28) that
// decays geometrically toward 1 over the horizon.
type ForecastV2 struct{}

// Name implements Forecaster.
func (ForecastV2) Name() string { return ModelForecastV2 }

// Forecast implements Forecaster. Histories shorter than 28 points are
// forecast by Naive.
func (ForecastV2) Forecast(history models.Series, horizon int) (*Result, error) {
	if err := validateInput("forecast v2", history, horizon); err != nil {
		return nil, err
	}
	if len(history) < v2Window {
		return Naive{}.Forecast(history, horizon)
	}

	window := history[len(history)-v2Window:]
	values := window.Values()
	slope, intercept := stats.LinearRegression(values)
	windowMean := stats.Mean(values)

	factors := weekdayFactors(window, windowMean)

	momentum := 1.0
	if windowMean > 0 {
		momentum = stats.Mean(values[len(values)-v2MomentumDays:]) / windowMean
		momentum = stats.Clamp(momentum, v2MomentumMin, v2MomentumMax)
	}

	out := make([]float64, horizon)
	for i := range out {
		step := i + 1
		trend := intercept + slope*float64(v2Window-1+step)
		damped := 1 + (momentum-1)*math.Pow(v2Damping, float64(step))
		out[i] = trend * factors[futureDate(history, step).Weekday()] * damped
	}
	return newResult(ModelForecastV2, history, out), nil
}

// weekdayFactors returns mean-by-weekday divided by the window mean. A zero
// window mean or an unobserved weekday yields a neutral factor.
func weekdayFactors(window models.Series, windowMean float64) [7]float64 {
	var sums [7]float64
	var counts [7]int
	for _, p := range window {
		wd := p.Date.Weekday()
		sums[wd] += p.Value
		counts[wd]++
	}

	var factors [7]float64
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		factors[wd] = 1
		if windowMean > 0 && counts[wd] > 0 {
			factors[wd] = sums[wd] / float64(counts[wd]) / windowMean
		}
	}
	return factors
}
