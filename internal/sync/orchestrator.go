// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/config"
	"github.com/tomtom215/tubelytics/internal/forecast"
	"github.com/tomtom215/tubelytics/internal/insights"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/nowcast"
	"github.com/tomtom215/tubelytics/internal/scoring"
)

// ErrSyncInProgress is wrapped in the SYNC_FAILED error returned when a run
// is requested while another is active.
var ErrSyncInProgress = errors.New("sync already in progress")

// Stage names, in execution order.
const (
	StageChannel        = "channel"
	StageVideos         = "videos"
	StageChannelMetrics = "channel_metrics"
	StageVideoMetrics   = "video_metrics"
	StageDerived        = "derived"
	StageCompetitors    = "competitors"
	StageInsights       = "insights"

	// StageComplete is reported once after the last stage succeeds.
	StageComplete = "complete"
)

// minMetricsLookbackDays is the shortest window of daily metrics fetched.
const minMetricsLookbackDays = 21

// Store is the persistence the orchestrator writes through.
type Store interface {
	UpsertChannel(ctx context.Context, ch models.Channel) error
	UpsertVideos(ctx context.Context, videos []models.Video) error
	ListVideos(ctx context.Context, channelID string) ([]models.Video, error)

	UpsertChannelMetrics(ctx context.Context, rows []models.ChannelDayMetric) error
	GetChannelMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.ChannelDayMetric, error)
	UpsertVideoMetrics(ctx context.Context, rows []models.VideoDayMetric) error
	GetVideoMetrics(ctx context.Context, videoID string, r models.DateRange) ([]models.VideoDayMetric, error)
	GetVideoViewHistory(ctx context.Context, videoID string) (models.Series, error)

	UpsertQualityScores(ctx context.Context, scores []models.QualityScore) error
	UpsertCompetitorSnapshots(ctx context.Context, snaps []models.CompetitorSnapshot) error
	GetCompetitorSnapshots(ctx context.Context, videoID string) ([]models.CompetitorSnapshot, error)
	UpsertMomentum(ctx context.Context, records []models.MomentumRecord) error

	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	UpdateSyncCheckpoint(ctx context.Context, runID, checkpoint string) error
	FinishSyncRun(ctx context.Context, run *models.SyncRun) error
}

// CurveFitter refits growth curves; satisfied by *nowcast.Engine.
type CurveFitter interface {
	Refit(ctx context.Context, cluster, bucket string, population []nowcast.VideoViews) ([]models.GrowthCurvePoint, error)
}

// ModelTrainer trains forecast models; satisfied by *forecast.Registry.
type ModelTrainer interface {
	Train(ctx context.Context, modelType string, history models.Series) (*forecast.TrainingOutcome, error)
}

// InsightRunner sweeps insight plugins; satisfied by *insights.Runner.
type InsightRunner interface {
	Run(ctx context.Context, pc *insights.Context) (*insights.RunSummary, error)
}

// Dependencies are the analytics components invoked by the derived and
// insights stages. Nil components are skipped.
type Dependencies struct {
	Curves   CurveFitter
	Models   ModelTrainer
	Insights InsightRunner
	// Data is handed to insight plugins.
	Data insights.DataAccess
}

// Options tunes the orchestrator.
type Options struct {
	MaxVideos    int
	Workers      int
	ModelType    string
	MinHistory   int
	TrainingDays int
	HitFloor     float64
	Benchmarks   scoring.Benchmarks
}

// OptionsFromConfig derives Options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxVideos:    cfg.Sync.MaxVideos,
		Workers:      cfg.Sync.Workers,
		ModelType:    cfg.Forecast.ModelType,
		MinHistory:   cfg.Forecast.MinHistoryDays,
		TrainingDays: 365,
		HitFloor:     cfg.Insights.HitFloor,
		Benchmarks:   cfg.Insights.Benchmarks,
	}
}

func (o *Options) applyDefaults() {
	if o.MaxVideos <= 0 || o.MaxVideos > MaxVideosPerChannel {
		o.MaxVideos = MaxVideosPerChannel
	}
	if o.Workers <= 0 {
		o.Workers = 3
	}
	if o.ModelType == "" {
		o.ModelType = "channel_views"
	}
	if o.MinHistory <= 0 {
		o.MinHistory = 60
	}
	if o.TrainingDays < o.MinHistory {
		o.TrainingDays = 365
	}
	if o.Benchmarks == (scoring.Benchmarks{}) {
		o.Benchmarks = scoring.DefaultBenchmarks()
	}
}

// RunRequest describes one run.
type RunRequest struct {
	ChannelID     string
	CompetitorIDs []string
	Range         models.DateRange
	// Progress, if set, is called synchronously at every stage boundary.
	Progress func(models.Progress)
}

// RunResult summarizes a run. On failure it holds the counts of the stages
// that completed.
type RunResult struct {
	Run              *models.SyncRun           `json:"run"`
	Videos           int                       `json:"videos"`
	ChannelDays      int                       `json:"channel_days"`
	VideoDays        int                       `json:"video_days"`
	CurvesFitted     int                       `json:"curves_fitted"`
	QualityScores    int                       `json:"quality_scores"`
	Training         *forecast.TrainingOutcome `json:"training,omitempty"`
	CompetitorVideos int                       `json:"competitor_videos"`
	MomentumRecords  int                       `json:"momentum_records"`
	Insights         *insights.RunSummary      `json:"insights,omitempty"`
}

// Orchestrator runs the sync pipeline. Only one run may be active at a time.
type Orchestrator struct {
	store    Store
	provider DataProvider
	deps     Dependencies
	opts     Options
	now      func() time.Time

	mu      gosync.Mutex
	running bool
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(store Store, provider DataProvider, deps Dependencies, opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		store:    store,
		provider: provider,
		deps:     deps,
		opts:     opts,
		now:      time.Now,
	}
}

// Running reports whether a run is active.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) tryStart() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	metrics.SetSyncInProgress(true)
	return true
}

func (o *Orchestrator) done() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
	metrics.SetSyncInProgress(false)
}

// runState carries data between stages of one run.
type runState struct {
	req    RunRequest
	run    *models.SyncRun
	result *RunResult
	videos []models.Video
}

type stage struct {
	name    string
	percent int
	message string
	fn      func(ctx context.Context, st *runState) error
}

func (o *Orchestrator) stages() []stage {
	return []stage{
		{StageChannel, 10, "Fetching channel profile", o.syncChannel},
		{StageVideos, 20, "Fetching recent videos", o.syncVideos},
		{StageChannelMetrics, 35, "Fetching channel daily metrics", o.syncChannelMetrics},
		{StageVideoMetrics, 55, "Fetching video daily metrics", o.syncVideoMetrics},
		{StageDerived, 70, "Computing growth curves, quality scores and forecasts", o.computeDerived},
		{StageCompetitors, 85, "Refreshing competitors", o.syncCompetitors},
		{StageInsights, 95, "Generating insights", o.generateInsights},
	}
}

// Run executes the pipeline. A call made while another run is active fails
// immediately with a SYNC_FAILED error wrapping ErrSyncInProgress. A failing
// stage aborts the run; the run is recorded as failed and the normalized
// error is returned together with the partial result.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.ChannelID == "" {
		return nil, apperror.New(apperror.KindValidation, "sync run", "channel id is required")
	}
	if err := req.Range.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "sync run", err)
	}

	if !o.tryStart() {
		metrics.RecordSyncRejected()
		return nil, apperror.Wrap(apperror.KindSyncFailed, "sync run", ErrSyncInProgress)
	}
	defer o.done()

	start := time.Now()
	run := &models.SyncRun{
		ID:        uuid.NewString(),
		ChannelID: req.ChannelID,
		StartedAt: o.now().UTC(),
		Status:    models.RunStatusRunning,
	}
	ctx = logging.ContextWithRunID(ctx, run.ID)
	ctx = logging.ContextWithChannelID(ctx, req.ChannelID)

	st := &runState{req: req, run: run, result: &RunResult{Run: run}}

	if err := o.store.CreateSyncRun(ctx, run); err != nil {
		err = apperror.Normalize(fmt.Errorf("create sync run: %w", err))
		metrics.RecordSyncRun(time.Since(start), err)
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("range_start", req.Range.Start.Format(models.DayLayout)).
		Str("range_end", req.Range.End.Format(models.DayLayout)).
		Int("competitors", len(req.CompetitorIDs)).
		Msg("Sync run started")

	for _, s := range o.stages() {
		if err := o.runStage(ctx, st, s); err != nil {
			return st.result, o.fail(ctx, st, start, s.name, err)
		}
	}

	finished := o.now().UTC()
	run.Status = models.RunStatusCompleted
	run.FinishedAt = &finished
	if err := o.store.FinishSyncRun(context.WithoutCancel(ctx), run); err != nil {
		err = apperror.Normalize(fmt.Errorf("finish sync run: %w", err))
		metrics.RecordSyncRun(time.Since(start), err)
		return st.result, err
	}
	metrics.RecordSyncRun(time.Since(start), nil)
	o.progress(req, StageComplete, 100, "Sync complete")

	logging.Ctx(ctx).Info().
		Dur("duration", time.Since(start)).
		Int("videos", st.result.Videos).
		Int("video_days", st.result.VideoDays).
		Int("competitor_videos", st.result.CompetitorVideos).
		Msg("Sync run completed")
	return st.result, nil
}

func (o *Orchestrator) progress(req RunRequest, stageName string, percent int, message string) {
	if req.Progress != nil {
		req.Progress(models.Progress{Stage: stageName, Percent: percent, Message: message})
	}
}

func (o *Orchestrator) runStage(ctx context.Context, st *runState, s stage) error {
	o.progress(st.req, s.name, s.percent, s.message)

	start := time.Now()
	perf := models.StagePerf{Stage: s.name, StartedAt: o.now().UTC()}
	err := s.fn(ctx, st)
	perf.Duration = time.Since(start)

	kind := ""
	if err != nil {
		kind = string(apperror.Normalize(err).Kind)
		perf.Error = err.Error()
	}
	metrics.RecordSyncStage(s.name, perf.Duration, kind)
	st.run.Stages = append(st.run.Stages, perf)
	if err != nil {
		return err
	}

	st.run.Checkpoint = s.name
	if err := o.store.UpdateSyncCheckpoint(ctx, st.run.ID, s.name); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("stage", s.name).Dur("duration", perf.Duration).Msg("Sync stage completed")
	return nil
}

// fail records the run as failed and returns the normalized error.
func (o *Orchestrator) fail(ctx context.Context, st *runState, start time.Time, stageName string, cause error) error {
	normalized := apperror.Normalize(cause)
	err := &apperror.Error{Kind: normalized.Kind, Op: "sync stage " + stageName, Err: cause}

	finished := o.now().UTC()
	st.run.Status = models.RunStatusFailed
	st.run.Error = err.Error()
	st.run.FinishedAt = &finished
	if ferr := o.store.FinishSyncRun(context.WithoutCancel(ctx), st.run); ferr != nil {
		logging.Ctx(ctx).Error().Err(ferr).Msg("Failed to record failed sync run")
	}
	metrics.RecordSyncRun(time.Since(start), err)

	logging.Ctx(ctx).Error().
		Err(cause).
		Str("stage", stageName).
		Str("kind", string(err.Kind)).
		Str("checkpoint", st.run.Checkpoint).
		Msg("Sync run failed")
	return err
}
