// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

const (
	ensembleHoldout    = 14
	ensembleMinHistory = 42
	ensembleEpsilon    = 1e-6
)

// Ensemble blends two forecasters with weights inversely proportional to
// their sMAPE on a 14-day holdout.
type Ensemble struct {
	Primary   Forecaster
	Secondary Forecaster
}

// NewEnsemble returns the ForecastV2 + HoltWinters blend.
func NewEnsemble() *Ensemble {
	return &Ensemble{Primary: ForecastV2{}, Secondary: HoltWinters{}}
}

// Name implements Forecaster.
func (e *Ensemble) Name() string { return ModelEnsemble }

// Forecast implements Forecaster. When one member fails the other is used
// alone; when both fail the result comes from Naive.
func (e *Ensemble) Forecast(history models.Series, horizon int) (*Result, error) {
	if err := validateInput("ensemble forecast", history, horizon); err != nil {
		return nil, err
	}

	a, errA := e.Primary.Forecast(history, horizon)
	b, errB := e.Secondary.Forecast(history, horizon)
	switch {
	case errA != nil && errB != nil:
		return Naive{}.Forecast(history, horizon)
	case errA != nil:
		return b, nil
	case errB != nil:
		return a, nil
	}

	wa, wb := e.weights(history)
	out := make([]float64, horizon)
	pa, pb := a.Values(), b.Values()
	for i := range out {
		out[i] = wa*pa[i] + wb*pb[i]
	}
	return newResult(ModelEnsemble, history, out), nil
}

// weights returns normalized member weights. Short histories and holdout
// failures give equal weights.
func (e *Ensemble) weights(history models.Series) (float64, float64) {
	if len(history) < ensembleMinHistory {
		return 0.5, 0.5
	}

	train := history[:len(history)-ensembleHoldout]
	actual := history[len(history)-ensembleHoldout:].Values()

	sa, okA := holdoutSMAPE(e.Primary, train, actual)
	sb, okB := holdoutSMAPE(e.Secondary, train, actual)
	if !okA || !okB {
		return 0.5, 0.5
	}

	ia := 1 / (sa + ensembleEpsilon)
	ib := 1 / (sb + ensembleEpsilon)
	return ia / (ia + ib), ib / (ia + ib)
}

func holdoutSMAPE(f Forecaster, train models.Series, actual []float64) (float64, bool) {
	res, err := f.Forecast(train, len(actual))
	if err != nil {
		return 0, false
	}
	s, err := stats.SMAPE(actual, res.Values())
	if err != nil {
		return 0, false
	}
	return s, true
}
