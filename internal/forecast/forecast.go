// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"errors"
	"math"
	"time"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/models"
)

// Model names.
const (
	ModelNaive         = "Naive"
	ModelSeasonalNaive = "SeasonalNaive"
	ModelForecastV2    = "ForecastV2"
	ModelHoltWinters   = "HoltWinters"
	ModelEnsemble      = "Ensemble"
)

// SeasonLength is the weekly season used by the seasonal models.
const SeasonLength = 7

// ErrInsufficientHistory is wrapped by training and backtest errors when the
// series is too short.
var ErrInsufficientHistory = errors.New("insufficient history")

// Forecaster predicts the next horizon days of a daily series.
type Forecaster interface {
	// Name returns the model name used as the registry key.
	Name() string

	// Forecast returns exactly horizon predictions dated after the last
	// history point. History must be non-empty and chronologically ordered.
	Forecast(history models.Series, horizon int) (*Result, error)
}

// Result is the output of a forecaster. Lower and Upper are set only by
// models that produce confidence bands.
type Result struct {
	ModelName   string        `json:"model_name"`
	Predictions models.Series `json:"predictions"`
	Lower       []float64     `json:"lower,omitempty"`
	Upper       []float64     `json:"upper,omitempty"`
}

// Values returns the predicted values in order.
func (r *Result) Values() []float64 {
	return r.Predictions.Values()
}

func validateInput(op string, history models.Series, horizon int) error {
	if len(history) == 0 {
		return apperror.New(apperror.KindValidation, op, "history is empty")
	}
	if horizon < 1 {
		return apperror.Newf(apperror.KindValidation, op, "horizon must be positive, got %d", horizon)
	}
	return nil
}

// futureDate returns the date step days after the last history point.
func futureDate(history models.Series, step int) time.Time {
	return history.Last().Date.AddDate(0, 0, step)
}

// newResult builds a Result from raw values, dating and clamping each one.
func newResult(name string, history models.Series, values []float64) *Result {
	preds := make(models.Series, len(values))
	for i, v := range values {
		preds[i] = models.Point{Date: futureDate(history, i+1), Value: nonNegative(v)}
	}
	return &Result{ModelName: name, Predictions: preds}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Suite returns every forecaster in registry candidate order.
func Suite() []Forecaster {
	return []Forecaster{
		Naive{},
		SeasonalNaive{},
		ForecastV2{},
		HoltWinters{},
		NewEnsemble(),
	}
}
