// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// ModelStore persists registry records. SaveTrainingRun must insert the
// records and deactivate every other model of the same type atomically.
type ModelStore interface {
	LatestModelVersion(ctx context.Context, modelType string) (int, error)
	SaveTrainingRun(ctx context.Context, modelType string, records []models.ForecastModelRecord) error
	GetActiveModel(ctx context.Context, modelType string) (*models.ForecastModelRecord, error)
}

// RegistryConfig configures training.
type RegistryConfig struct {
	// MinHistory is the minimum number of daily points required to train.
	MinHistory int
	// Backtest controls candidate evaluation.
	Backtest BacktestOptions
	// Baseline is the model every candidate must match or beat.
	Baseline string
}

// DefaultRegistryConfig returns a 60-day minimum, the default backtest and
// SeasonalNaive as the baseline.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		MinHistory: 60,
		Backtest:   DefaultBacktestOptions(),
		Baseline:   ModelSeasonalNaive,
	}
}

// Registry trains, gates and serves forecast models.
type Registry struct {
	store      ModelStore
	cfg        RegistryConfig
	candidates []Forecaster
	byName     map[string]Forecaster
	now        func() time.Time
}

// NewRegistry creates a registry over the full forecaster suite.
func NewRegistry(store ModelStore, cfg RegistryConfig) *Registry {
	r := &Registry{
		store:  store,
		cfg:    cfg,
		byName: make(map[string]Forecaster),
		now:    time.Now,
	}
	for _, f := range Suite() {
		r.candidates = append(r.candidates, f)
		r.byName[f.Name()] = f
	}
	return r
}

// Lookup returns the forecaster registered under name.
func (r *Registry) Lookup(name string) (Forecaster, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// TrainingOutcome describes one training run.
type TrainingOutcome struct {
	ModelType      string                       `json:"model_type"`
	Version        int                          `json:"version"`
	Candidate      string                       `json:"candidate"`
	CandidateSMAPE float64                      `json:"candidate_smape"`
	BaselineSMAPE  float64                      `json:"baseline_smape"`
	Active         string                       `json:"active"`
	GatePassed     bool                         `json:"gate_passed"`
	Results        []BacktestResult             `json:"results"`
	Records        []models.ForecastModelRecord `json:"records"`
}

// Train backtests every candidate on history and activates the winner for
// modelType if it passes the quality gate.
func (r *Registry) Train(ctx context.Context, modelType string, history models.Series) (*TrainingOutcome, error) {
	start := time.Now()
	defer func() { metrics.ForecastTrainingDuration.Observe(time.Since(start).Seconds()) }()

	if len(history) < r.cfg.MinHistory {
		return nil, &apperror.Error{
			Kind:    apperror.KindValidation,
			Op:      "train models",
			Message: fmt.Sprintf("need at least %d days of history, got %d", r.cfg.MinHistory, len(history)),
			Err:     ErrInsufficientHistory,
		}
	}

	outcome := &TrainingOutcome{ModelType: modelType}
	baseline, best := -1, -1

	for _, f := range r.candidates {
		res, err := Backtest(f, history, r.cfg.Backtest)
		if err != nil {
			return nil, fmt.Errorf("backtest %s: %w", f.Name(), err)
		}
		metrics.RecordBacktest(modelType, res.ModelName, res.SMAPE)

		idx := len(outcome.Results)
		outcome.Results = append(outcome.Results, *res)
		if res.ModelName == r.cfg.Baseline {
			baseline = idx
		}
		if best < 0 || res.SMAPE < outcome.Results[best].SMAPE {
			best = idx
		}
	}
	if baseline < 0 {
		return nil, fmt.Errorf("baseline model %q is not a candidate", r.cfg.Baseline)
	}

	outcome.Candidate = outcome.Results[best].ModelName
	outcome.CandidateSMAPE = outcome.Results[best].SMAPE
	outcome.BaselineSMAPE = outcome.Results[baseline].SMAPE
	outcome.GatePassed = outcome.CandidateSMAPE <= outcome.BaselineSMAPE
	outcome.Active = outcome.Results[baseline].ModelName
	if outcome.GatePassed {
		outcome.Active = outcome.Candidate
	}

	latest, err := r.store.LatestModelVersion(ctx, modelType)
	if err != nil {
		return nil, fmt.Errorf("latest model version: %w", err)
	}
	outcome.Version = latest + 1

	trainedAt := r.now().UTC()
	for _, res := range outcome.Results {
		outcome.Records = append(outcome.Records, models.ForecastModelRecord{
			ID:        uuid.New().String(),
			Type:      modelType,
			ModelName: res.ModelName,
			Version:   outcome.Version,
			TrainedAt: trainedAt,
			SMAPE:     res.SMAPE,
			MAE:       res.MAE,
			Windows:   res.Windows,
			IsActive:  res.ModelName == outcome.Active,
		})
	}

	if err := r.store.SaveTrainingRun(ctx, modelType, outcome.Records); err != nil {
		return nil, fmt.Errorf("save training run: %w", err)
	}
	metrics.RecordPromotion(modelType, outcome.Active, outcome.GatePassed)

	logging.Ctx(ctx).Info().
		Str("model_type", modelType).
		Int("version", outcome.Version).
		Str("candidate", outcome.Candidate).
		Float64("candidate_smape", outcome.CandidateSMAPE).
		Float64("baseline_smape", outcome.BaselineSMAPE).
		Bool("gate_passed", outcome.GatePassed).
		Str("active", outcome.Active).
		Msg("Forecast models trained")

	return outcome, nil
}

// Active returns the active model record for modelType, or nil if none.
func (r *Registry) Active(ctx context.Context, modelType string) (*models.ForecastModelRecord, error) {
	return r.store.GetActiveModel(ctx, modelType)
}

// ForecastActive forecasts with the active model for modelType, falling back
// to the baseline when nothing has been trained yet.
func (r *Registry) ForecastActive(ctx context.Context, modelType string, history models.Series, horizon int) (*Result, error) {
	f, err := r.activeForecaster(ctx, modelType)
	if err != nil {
		return nil, err
	}
	return f.Forecast(history, horizon)
}

// ForecastWithBand is ForecastActive plus an empirical band: Lower and Upper
// come from the active model's backtest residuals on history. Models that
// produce their own band keep it. When history is too short for a single
// backtest window the band collapses onto the predictions.
func (r *Registry) ForecastWithBand(ctx context.Context, modelType string, history models.Series, horizon int) (*Result, error) {
	f, err := r.activeForecaster(ctx, modelType)
	if err != nil {
		return nil, err
	}
	res, err := f.Forecast(history, horizon)
	if err != nil {
		return nil, err
	}
	if len(res.Lower) == len(res.Predictions) && len(res.Upper) == len(res.Predictions) {
		return res, nil
	}

	opts := r.cfg.Backtest
	if opts.validate() != nil {
		opts = DefaultBacktestOptions()
	}
	bt, err := Backtest(f, history, opts)
	if err != nil {
		return nil, fmt.Errorf("band for %s: %w", f.Name(), err)
	}
	res.Lower, res.Upper = ConfidenceBand(res.Values(), bt.Residuals)
	return res, nil
}

func (r *Registry) activeForecaster(ctx context.Context, modelType string) (Forecaster, error) {
	name := r.cfg.Baseline
	rec, err := r.store.GetActiveModel(ctx, modelType)
	if err != nil {
		return nil, fmt.Errorf("active model: %w", err)
	}
	if rec != nil {
		name = rec.ModelName
	}
	f, ok := r.Lookup(name)
	if !ok {
		return nil, apperror.Newf(apperror.KindValidation, "forecast active", "unknown model %q", name)
	}
	return f, nil
}
