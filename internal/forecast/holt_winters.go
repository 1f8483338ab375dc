// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"math"

	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/stats"
)

// holtWintersGrid is searched for alpha, beta and gamma.
var holtWintersGrid = []float64{0.1, 0.3, 0.5, 0.7, 0.9}

// bandZ is the normal quantile for a 95% band.
const bandZ = 1.96

// HoltWinters is additive triple exponential smoothing with a weekly season.
type HoltWinters struct{}

// Name implements Forecaster.
func (HoltWinters) Name() string { return ModelHoltWinters }

// Forecast implements Forecaster. Histories shorter than three seasons are
// forecast by ForecastV2.
func (HoltWinters) Forecast(history models.Series, horizon int) (*Result, error) {
	if err := validateInput("holt-winters forecast", history, horizon); err != nil {
		return nil, err
	}
	if len(history) < 3*SeasonLength {
		return ForecastV2{}.Forecast(history, horizon)
	}

	values := history.Values()
	var best *hwFit
	for _, alpha := range holtWintersGrid {
		for _, beta := range holtWintersGrid {
			for _, gamma := range holtWintersGrid {
				fit := fitHoltWinters(values, alpha, beta, gamma)
				if best == nil || fit.mae < best.mae {
					best = fit
				}
			}
		}
	}

	n := len(values)
	out := make([]float64, horizon)
	for i := range out {
		h := i + 1
		out[i] = best.level + float64(h)*best.trend + best.seasonals[n-SeasonLength+(i%SeasonLength)]
	}

	res := newResult(ModelHoltWinters, history, out)
	spread := bandZ * stats.StdDev(best.residuals)
	res.Lower = make([]float64, horizon)
	res.Upper = make([]float64, horizon)
	for i, p := range res.Predictions {
		res.Lower[i] = math.Max(0, p.Value-spread)
		res.Upper[i] = p.Value + spread
	}
	return res, nil
}

type hwFit struct {
	level     float64
	trend     float64
	seasonals []float64
	residuals []float64
	mae       float64
}

// fitHoltWinters runs the additive recursions over x and records one-step
// ahead residuals from the second season onward.
func fitHoltWinters(x []float64, alpha, beta, gamma float64) *hwFit {
	m := SeasonLength
	n := len(x)

	first := stats.Mean(x[:m])
	second := stats.Mean(x[m : 2*m])
	level := first
	trend := (second - first) / float64(m)

	seasonals := make([]float64, n)
	for i := 0; i < m; i++ {
		seasonals[i] = x[i] - level
	}

	residuals := make([]float64, 0, n-m)
	var absErr float64
	for t := m; t < n; t++ {
		season := seasonals[t-m]
		predicted := level + trend + season
		r := x[t] - predicted
		residuals = append(residuals, r)
		absErr += math.Abs(r)

		prevLevel := level
		level = alpha*(x[t]-season) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonals[t] = gamma*(x[t]-level) + (1-gamma)*season
	}

	return &hwFit{
		level:     level,
		trend:     trend,
		seasonals: seasonals,
		residuals: residuals,
		mae:       absErr / float64(len(residuals)),
	}
}
