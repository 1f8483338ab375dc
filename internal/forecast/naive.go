// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import "github.com/tomtom215/tubelytics/internal/models"

// Naive repeats the last observed value.
type Naive struct{}

// Name implements Forecaster.
func (Naive) Name() string { return ModelNaive }

// Forecast implements Forecaster.
func (Naive) Forecast(history models.Series, horizon int) (*Result, error) {
	if err := validateInput("naive forecast", history, horizon); err != nil {
		return nil, err
	}
	last := history.Last().Value
	values := make([]float64, horizon)
	for i := range values {
		values[i] = last
	}
	return newResult(ModelNaive, history, values), nil
}

// SeasonalNaive repeats the value observed one season earlier, cycling
// through the final seven-day block.
type SeasonalNaive struct{}

// Name implements Forecaster.
func (SeasonalNaive) Name() string { return ModelSeasonalNaive }

// Forecast implements Forecaster. Histories shorter than one season are
// forecast by Naive.
func (SeasonalNaive) Forecast(history models.Series, horizon int) (*Result, error) {
	if err := validateInput("seasonal naive forecast", history, horizon); err != nil {
		return nil, err
	}
	n := len(history)
	if n < SeasonLength {
		return Naive{}.Forecast(history, horizon)
	}
	values := make([]float64, horizon)
	for i := range values {
		values[i] = history[n-SeasonLength+(i%SeasonLength)].Value
	}
	return newResult(ModelSeasonalNaive, history, values), nil
}
