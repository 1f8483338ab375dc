// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package forecast implements the daily-series forecasting suite, the rolling
origin backtest harness and the model registry that promotes forecasters
behind a quality gate.

Forecasters:

  - Naive: repeats the last observed value
  - SeasonalNaive: repeats the value from seven days earlier, cycling
  - ForecastV2: least-squares trend over the last 28 days, scaled by a
    day-of-week factor and a damped short-term momentum ratio
  - HoltWinters: additive triple exponential smoothing (season 7) with a
    grid search over the smoothing constants and residual-based bands
  - Ensemble: inverse-sMAPE blend of ForecastV2 and HoltWinters

Each forecaster falls back to a simpler one when history is short, and the
returned Result names the model that actually produced the predictions. All
predictions are clamped to be non-negative and every forecaster accepts a
single-point history.

Registry:

The Registry backtests every candidate (window 28, horizon 7, step 7) over at
least 60 days of history. The lowest-sMAPE candidate becomes active only when
it matches or beats SeasonalNaive; otherwise SeasonalNaive stays active. All
candidates are recorded with the same version and the store deactivates every
other model of the type in one transaction.

Example:

	reg := forecast.NewRegistry(db, forecast.DefaultRegistryConfig())
	outcome, err := reg.Train(ctx, "channel_views", history)
	if err != nil {
	    return err
	}
	res, err := reg.ForecastActive(ctx, "channel_views", history, 14)
*/
package forecast
