// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"testing"
)

func TestBacktestResidualsWithConstantPredictor(t *testing.T) {
	t.Parallel()

	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i * 3)
	}
	series := makeSeries(values...)
	predictor := constantForecaster{name: "Const", value: 5}

	res, err := Backtest(predictor, series, BacktestOptions{Window: 10, Horizon: 3, Step: 4})
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}

	// origins 10, 14; 18+3 > 20 stops
	if res.Windows != 2 {
		t.Fatalf("Windows = %d, want 2", res.Windows)
	}
	var want []float64
	for _, origin := range []int{10, 14} {
		for i := 0; i < 3; i++ {
			want = append(want, values[origin+i]-5)
		}
	}
	if len(res.Residuals) != len(want) {
		t.Fatalf("got %d residuals, want %d", len(res.Residuals), len(want))
	}
	for i := range want {
		if res.Residuals[i] != want[i] {
			t.Errorf("residual[%d] = %v, want %v", i, res.Residuals[i], want[i])
		}
	}
	if res.ModelName != "Const" {
		t.Errorf("ModelName = %q", res.ModelName)
	}
}

func TestBacktestExactModelScoresZero(t *testing.T) {
	t.Parallel()

	series := constantSeries(70, 10)
	res, err := Backtest(Naive{}, series, DefaultBacktestOptions())
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}
	if res.Windows != 6 {
		t.Errorf("Windows = %d, want 6", res.Windows)
	}
	if res.SMAPE != 0 || res.MAE != 0 {
		t.Errorf("SMAPE/MAE = %v/%v, want 0/0", res.SMAPE, res.MAE)
	}
}

func TestBacktestInsufficientHistory(t *testing.T) {
	t.Parallel()

	res, err := Backtest(Naive{}, constantSeries(30, 1), DefaultBacktestOptions())
	if err != nil {
		t.Fatalf("Backtest() error = %v", err)
	}
	if res.Windows != 0 || res.SMAPE != 0 || res.MAE != 0 {
		t.Errorf("expected zeroed metrics, got %+v", res)
	}
	if res.Residuals == nil || len(res.Residuals) != 0 {
		t.Errorf("expected empty residual list, got %v", res.Residuals)
	}
}

func TestBacktestInvalidOptions(t *testing.T) {
	t.Parallel()

	if _, err := Backtest(Naive{}, constantSeries(30, 1), BacktestOptions{Window: 28, Horizon: 0, Step: 7}); err == nil {
		t.Error("expected error for zero horizon")
	}
}

func TestConfidenceBand(t *testing.T) {
	t.Parallel()

	residuals := []float64{-4, -2, 0, 2, 4}
	lower, upper := ConfidenceBand([]float64{10, 1}, residuals)

	if lower[0] != 8 || upper[0] != 12 {
		t.Errorf("band[0] = [%v, %v], want [8, 12]", lower[0], upper[0])
	}
	if lower[1] != 0 || upper[1] != 3 {
		t.Errorf("band[1] = [%v, %v], want [0, 3]", lower[1], upper[1])
	}
}
