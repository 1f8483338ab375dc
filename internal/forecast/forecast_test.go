// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/models"
)

var seriesStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func makeSeries(values ...float64) models.Series {
	s := make(models.Series, len(values))
	for i, v := range values {
		s[i] = models.Point{Date: seriesStart.AddDate(0, 0, i), Value: v}
	}
	return s
}

func repeatWeek(weeks int, week ...float64) models.Series {
	var values []float64
	for w := 0; w < weeks; w++ {
		values = append(values, week...)
	}
	return makeSeries(values...)
}

func constantSeries(n int, v float64) models.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return makeSeries(values...)
}

func assertValues(t *testing.T, res *Result, want []float64, tol float64) {
	t.Helper()
	got := res.Values()
	if len(got) != len(want) {
		t.Fatalf("got %d predictions, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("prediction[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNaiveRepeatsLastValue(t *testing.T) {
	t.Parallel()

	for _, s := range []models.Series{
		makeSeries(5),
		makeSeries(1, 2, 3),
		makeSeries(100, 0, 42.5),
	} {
		res, err := Naive{}.Forecast(s, 4)
		if err != nil {
			t.Fatalf("Forecast() error = %v", err)
		}
		last := s.Last().Value
		assertValues(t, res, []float64{last, last, last, last}, 0)
		if res.ModelName != ModelNaive {
			t.Errorf("ModelName = %q", res.ModelName)
		}
	}
}

func TestSeasonalNaive(t *testing.T) {
	t.Parallel()

	history := makeSeries(10, 20, 30, 40, 50, 60, 70, 10, 20, 30, 40, 50, 60, 70)
	res, err := SeasonalNaive{}.Forecast(history, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	assertValues(t, res, []float64{10, 20, 30, 40, 50, 60, 70}, 0)
	if res.ModelName != ModelSeasonalNaive {
		t.Errorf("ModelName = %q, want %q", res.ModelName, ModelSeasonalNaive)
	}

	cycled, err := SeasonalNaive{}.Forecast(history, 9)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if got := cycled.Values()[8]; got != 20 {
		t.Errorf("prediction[8] = %v, want 20", got)
	}

	short, err := SeasonalNaive{}.Forecast(makeSeries(1, 2, 3), 2)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if short.ModelName != ModelNaive {
		t.Errorf("short history ModelName = %q, want %q", short.ModelName, ModelNaive)
	}
}

func TestForecastV2(t *testing.T) {
	t.Parallel()

	short, err := ForecastV2{}.Forecast(constantSeries(27, 10), 3)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if short.ModelName != ModelNaive {
		t.Errorf("27 points ModelName = %q, want %q", short.ModelName, ModelNaive)
	}

	res, err := ForecastV2{}.Forecast(constantSeries(28, 10), 5)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if res.ModelName != ModelForecastV2 {
		t.Errorf("28 points ModelName = %q, want %q", res.ModelName, ModelForecastV2)
	}
	assertValues(t, res, []float64{10, 10, 10, 10, 10}, 1e-9)
}

func TestForecastV2ClampsNegative(t *testing.T) {
	t.Parallel()

	values := make([]float64, 28)
	for i := range values {
		values[i] = float64(280 - 10*i)
	}
	res, err := ForecastV2{}.Forecast(makeSeries(values...), 14)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	for i, v := range res.Values() {
		if v < 0 {
			t.Errorf("prediction[%d] = %v, want >= 0", i, v)
		}
	}
}

func TestHoltWinters(t *testing.T) {
	t.Parallel()

	short, err := HoltWinters{}.Forecast(constantSeries(20, 5), 3)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if short.ModelName == ModelHoltWinters {
		t.Error("20 points should delegate to ForecastV2")
	}

	history := repeatWeek(5, 10, 20, 30, 40, 50, 60, 70)
	res, err := HoltWinters{}.Forecast(history, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if res.ModelName != ModelHoltWinters {
		t.Errorf("ModelName = %q, want %q", res.ModelName, ModelHoltWinters)
	}
	assertValues(t, res, []float64{10, 20, 30, 40, 50, 60, 70}, 1e-6)

	if len(res.Lower) != 7 || len(res.Upper) != 7 {
		t.Fatalf("expected bands for every step, got %d/%d", len(res.Lower), len(res.Upper))
	}
	for i, p := range res.Values() {
		if res.Lower[i] > p || res.Upper[i] < p || res.Lower[i] < 0 {
			t.Errorf("band[%d] = [%v, %v] does not contain %v", i, res.Lower[i], res.Upper[i], p)
		}
	}
}

func TestEnsemble(t *testing.T) {
	t.Parallel()

	history := repeatWeek(7, 10, 20, 30, 40, 50, 60, 70)
	res, err := NewEnsemble().Forecast(history, 7)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if res.ModelName != ModelEnsemble {
		t.Errorf("ModelName = %q, want %q", res.ModelName, ModelEnsemble)
	}
	if len(res.Predictions) != 7 {
		t.Errorf("got %d predictions, want 7", len(res.Predictions))
	}
}

type failingForecaster struct{}

func (failingForecaster) Name() string { return "Failing" }
func (failingForecaster) Forecast(models.Series, int) (*Result, error) {
	return nil, errors.New("model failure")
}

type constantForecaster struct {
	name  string
	value float64
}

func (c constantForecaster) Name() string { return c.name }
func (c constantForecaster) Forecast(history models.Series, horizon int) (*Result, error) {
	if err := validateInput("constant", history, horizon); err != nil {
		return nil, err
	}
	values := make([]float64, horizon)
	for i := range values {
		values[i] = c.value
	}
	return newResult(c.name, history, values), nil
}

func TestEnsembleFallbacks(t *testing.T) {
	t.Parallel()

	history := constantSeries(10, 3)

	tests := []struct {
		name      string
		ensemble  *Ensemble
		wantModel string
		want      float64
	}{
		{"primary fails", &Ensemble{Primary: failingForecaster{}, Secondary: constantForecaster{"B", 8}}, "B", 8},
		{"secondary fails", &Ensemble{Primary: constantForecaster{"A", 6}, Secondary: failingForecaster{}}, "A", 6},
		{"both fail", &Ensemble{Primary: failingForecaster{}, Secondary: failingForecaster{}}, ModelNaive, 3},
		{"equal weights on short history", &Ensemble{Primary: constantForecaster{"A", 2}, Secondary: constantForecaster{"B", 4}}, ModelEnsemble, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := tt.ensemble.Forecast(history, 3)
			if err != nil {
				t.Fatalf("Forecast() error = %v", err)
			}
			if res.ModelName != tt.wantModel {
				t.Errorf("ModelName = %q, want %q", res.ModelName, tt.wantModel)
			}
			assertValues(t, res, []float64{tt.want, tt.want, tt.want}, 1e-9)
		})
	}
}

func TestEnsembleFavorsAccurateMember(t *testing.T) {
	t.Parallel()

	history := constantSeries(50, 10)
	e := &Ensemble{Primary: constantForecaster{"exact", 10}, Secondary: constantForecaster{"off", 20}}
	res, err := e.Forecast(history, 1)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if got := res.Values()[0]; math.Abs(got-10) > 1e-3 {
		t.Errorf("prediction = %v, want close to 10", got)
	}
}

func TestAllModelsAcceptSinglePoint(t *testing.T) {
	t.Parallel()

	history := makeSeries(42)
	for _, f := range Suite() {
		res, err := f.Forecast(history, 3)
		if err != nil {
			t.Errorf("%s: Forecast() error = %v", f.Name(), err)
			continue
		}
		if len(res.Predictions) != 3 {
			t.Errorf("%s: got %d predictions, want 3", f.Name(), len(res.Predictions))
		}
		want := seriesStart.AddDate(0, 0, 1)
		if !res.Predictions[0].Date.Equal(want) {
			t.Errorf("%s: first date = %s, want %s", f.Name(), res.Predictions[0].Date, want)
		}
	}
}

func TestForecastValidation(t *testing.T) {
	t.Parallel()

	for _, f := range Suite() {
		if _, err := f.Forecast(nil, 3); apperror.KindOf(err) != apperror.KindValidation {
			t.Errorf("%s: empty history error = %v", f.Name(), err)
		}
		if _, err := f.Forecast(makeSeries(1), 0); apperror.KindOf(err) != apperror.KindValidation {
			t.Errorf("%s: zero horizon error = %v", f.Name(), err)
		}
	}
}
