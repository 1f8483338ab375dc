// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"fmt"
	"math"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

// BacktestOptions configures rolling-origin evaluation.
type BacktestOptions struct {
	// Window is the first forecast origin (minimum history length).
	Window int
	// Horizon is the number of steps forecast per origin.
	Horizon int
	// Step advances the origin between windows.
	Step int
}

// DefaultBacktestOptions returns window 28, horizon 7, step 7.
func DefaultBacktestOptions() BacktestOptions {
	return BacktestOptions{Window: 28, Horizon: 7, Step: 7}
}

func (o BacktestOptions) validate() error {
	if o.Window < 1 || o.Horizon < 1 || o.Step < 1 {
		return apperror.Newf(apperror.KindValidation, "backtest",
			"window, horizon and step must be positive (got %d, %d, %d)", o.Window, o.Horizon, o.Step)
	}
	return nil
}

// BacktestResult summarizes a backtest. Residuals are actual minus predicted,
// flattened across windows in origin order.
type BacktestResult struct {
	ModelName string    `json:"model_name"`
	SMAPE     float64   `json:"smape"`
	MAE       float64   `json:"mae"`
	Windows   int       `json:"windows"`
	Residuals []float64 `json:"residuals"`
}

// Backtest evaluates f with an expanding history. The origin starts at
// opts.Window and advances by opts.Step while a full horizon of actuals
// remains. Too little history is not an error: the result has zero windows.
func Backtest(f Forecaster, series models.Series, opts BacktestOptions) (*BacktestResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	result := &BacktestResult{ModelName: f.Name(), Residuals: []float64{}}
	var smapes, maes []float64

	for origin := opts.Window; origin+opts.Horizon <= len(series); origin += opts.Step {
		res, err := f.Forecast(series[:origin], opts.Horizon)
		if err != nil {
			return nil, fmt.Errorf("backtest %s at origin %d: %w", f.Name(), origin, err)
		}
		actual := series[origin : origin+opts.Horizon].Values()
		predicted := res.Values()

		s, err := stats.SMAPE(actual, predicted)
		if err != nil {
			return nil, fmt.Errorf("backtest %s at origin %d: %w", f.Name(), origin, err)
		}
		m, err := stats.MAE(actual, predicted)
		if err != nil {
			return nil, fmt.Errorf("backtest %s at origin %d: %w", f.Name(), origin, err)
		}
		smapes = append(smapes, s)
		maes = append(maes, m)
		for i := range actual {
			result.Residuals = append(result.Residuals, actual[i]-predicted[i])
		}
	}

	result.Windows = len(smapes)
	if result.Windows > 0 {
		result.SMAPE = stats.Mean(smapes)
		result.MAE = stats.Mean(maes)
	}
	return result, nil
}

// ConfidenceBand returns prediction + Q25(residuals) and prediction +
// Q75(residuals) for each prediction, clamped at zero.
func ConfidenceBand(predictions, residuals []float64) (lower, upper []float64) {
	q25 := stats.Quantile(residuals, 0.25)
	q75 := stats.Quantile(residuals, 0.75)
	lower = make([]float64, len(predictions))
	upper = make([]float64, len(predictions))
	for i, p := range predictions {
		lower[i] = math.Max(0, p+q25)
		upper[i] = math.Max(0, p+q75)
	}
	return lower, upper
}
