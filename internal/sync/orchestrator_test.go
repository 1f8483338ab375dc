// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

type harness struct {
	provider *mockProvider
	store    *mockStore
	curves   *mockCurves
	trainer  *mockTrainer
	insights *mockInsights
	orch     *Orchestrator
	progress []models.Progress
}

// newHarness builds an orchestrator over a channel with three videos (one
// per duration bucket), 90 days of channel views and one competitor video
// with a week of prior snapshots. Only v1 has rows from its publish day on;
// v2 is younger than a growth curve and v3 was published before the synced
// window.
func newHarness(t *testing.T) *harness {
	t.Helper()
	end := models.Day(fixedNow)

	provider := &mockProvider{
		videos: []models.Video{
			{ID: "v1", Title: "Short clip", PublishedAt: end.AddDate(0, 0, -29), DurationSeconds: 45},
			{ID: "v2", Title: "Tutorial", PublishedAt: end.AddDate(0, 0, -10), DurationSeconds: 600},
			{ID: "v3", Title: "Livestream", PublishedAt: end.AddDate(0, 0, -100), DurationSeconds: 3600},
		},
		channelMetrics: dailyValues("", end, 90, models.MetricViews, func(i int) float64 { return float64(100 + i) }),
		videoMetrics: map[string][]models.MetricValue{
			"v1": dailyValues("v1", end, 30, models.MetricViews, func(int) float64 { return 50 }),
			"v2": dailyValues("v2", end, 30, models.MetricViews, func(int) float64 { return 20 }),
			"v3": dailyValues("v3", end, 30, models.MetricViews, func(int) float64 { return 5 }),
		},
		publicVideos: map[string][]models.Video{
			"UC2": {{ID: "c1", Title: "Rival hit", PublishedAt: end.AddDate(0, 0, -8), ViewCount: 20000}},
		},
	}

	store := newMockStore()
	for i := 7; i >= 1; i-- {
		store.snapshots["c1"] = append(store.snapshots["c1"], models.CompetitorSnapshot{
			VideoID: "c1", Day: end.AddDate(0, 0, -i), ViewCount: int64((8 - i) * 1000),
		})
	}

	h := &harness{
		provider: provider,
		store:    store,
		curves:   &mockCurves{},
		trainer:  &mockTrainer{},
		insights: &mockInsights{},
	}
	h.orch = NewOrchestrator(store, provider, Dependencies{
		Curves:   h.curves,
		Models:   h.trainer,
		Insights: h.insights,
		Data:     emptyData{},
	}, Options{Workers: 3})
	h.orch.now = func() time.Time { return fixedNow }
	return h
}

func (h *harness) request() RunRequest {
	return RunRequest{
		ChannelID:     "UC1",
		CompetitorIDs: []string{"UC2"},
		Range:         models.NewDateRange(fixedNow, 90),
		Progress:      func(p models.Progress) { h.progress = append(h.progress, p) },
	}
}

func TestOrchestratorRunsStagesInOrder(t *testing.T) {
	h := newHarness(t)

	result, err := h.orch.Run(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantStages := []string{
		StageChannel, StageVideos, StageChannelMetrics, StageVideoMetrics,
		StageDerived, StageCompetitors, StageInsights,
	}
	if len(h.progress) != len(wantStages)+1 {
		t.Fatalf("progress events = %d, want %d", len(h.progress), len(wantStages)+1)
	}
	for i, name := range wantStages {
		if h.progress[i].Stage != name {
			t.Errorf("progress[%d].Stage = %q, want %q", i, h.progress[i].Stage, name)
		}
		if i > 0 && h.progress[i].Percent <= h.progress[i-1].Percent {
			t.Errorf("progress[%d].Percent = %d, not increasing", i, h.progress[i].Percent)
		}
	}
	last := h.progress[len(h.progress)-1]
	if last.Stage != StageComplete || last.Percent != 100 {
		t.Errorf("final progress = %+v, want complete at 100", last)
	}

	if fmt.Sprint(h.store.checkpoints) != fmt.Sprint(wantStages) {
		t.Errorf("checkpoints = %v, want %v", h.store.checkpoints, wantStages)
	}
	if len(h.store.finished) != 1 {
		t.Fatalf("finished runs = %d, want 1", len(h.store.finished))
	}
	run := h.store.finished[0]
	if run.Status != models.RunStatusCompleted || run.Checkpoint != StageInsights || run.FinishedAt == nil {
		t.Errorf("finished run = %+v", run)
	}
	if len(run.Stages) != len(wantStages) {
		t.Errorf("stage records = %d, want %d", len(run.Stages), len(wantStages))
	}
	if result.Run.ID != run.ID || h.store.created[0].Status != models.RunStatusRunning {
		t.Errorf("run id mismatch or created run not running: %+v", h.store.created[0])
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"videos", result.Videos, 3},
		{"channel days", result.ChannelDays, 90},
		{"video days", result.VideoDays, 90},
		{"curves fitted", result.CurvesFitted, 1},
		{"quality scores", result.QualityScores, 3},
		{"competitor videos", result.CompetitorVideos, 1},
		{"momentum records", result.MomentumRecords, 7},
		{"training history", len(h.trainer.history), 90},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	if fmt.Sprint(h.curves.buckets) != "[short]" || h.curves.sizes[models.BucketShort] != 1 {
		t.Errorf("refit buckets = %v sizes = %v, want only short with one video", h.curves.buckets, h.curves.sizes)
	}
	if result.Training == nil || h.trainer.modelType != "channel_views" {
		t.Errorf("training not run for channel_views: %+v", result.Training)
	}
	if result.Insights == nil || len(h.insights.contexts) != 1 || h.insights.contexts[0].RunID != run.ID {
		t.Errorf("insight sweep not run with run id %s", run.ID)
	}

	if ch := h.store.channels["UC1"]; ch.IsCompetitor {
		t.Error("owned channel stored as competitor")
	}
	if ch := h.store.channels["UC2"]; !ch.IsCompetitor {
		t.Error("competitor channel not flagged")
	}
	if v := h.store.videos["v1"]; v.ChannelID != "UC1" {
		t.Errorf("video channel = %q, want UC1", v.ChannelID)
	}
	if v := h.store.videos["c1"]; !v.IsCompetitor || v.ChannelID != "UC2" {
		t.Errorf("competitor video = %+v", v)
	}
	today := h.store.snapshots["c1"][len(h.store.snapshots["c1"])-1]
	if !today.Day.Equal(models.Day(fixedNow)) || today.ViewCount != 20000 {
		t.Errorf("today's snapshot = %+v", today)
	}
}

func TestOrchestratorStageFailureMarksRunFailed(t *testing.T) {
	h := newHarness(t)
	authErr := apperror.New(apperror.KindAuth, "video daily metrics", "token expired")
	h.provider.errs = map[string]error{"GetVideoDailyMetrics": authErr}

	result, err := h.orch.Run(context.Background(), h.request())
	if err == nil {
		t.Fatal("Run() should fail")
	}
	if apperror.KindOf(err) != apperror.KindAuth {
		t.Errorf("KindOf(err) = %s, want %s", apperror.KindOf(err), apperror.KindAuth)
	}
	if !errors.Is(err, authErr) {
		t.Errorf("error chain lost the cause: %v", err)
	}
	if result == nil || result.Videos != 3 {
		t.Errorf("partial result = %+v, want 3 videos", result)
	}

	run := h.store.finished[0]
	if run.Status != models.RunStatusFailed || run.Error == "" {
		t.Errorf("run = %+v, want failed with error", run)
	}
	if run.Checkpoint != StageChannelMetrics {
		t.Errorf("checkpoint = %q, want %q", run.Checkpoint, StageChannelMetrics)
	}
	if len(run.Stages) != 4 || run.Stages[3].Error == "" {
		t.Errorf("stages = %+v, want 4 with the last failed", run.Stages)
	}
	if h.trainer.calls != 0 || len(h.insights.contexts) != 0 {
		t.Error("stages after the failure ran")
	}
	if got := h.progress[len(h.progress)-1].Stage; got != StageVideoMetrics {
		t.Errorf("last progress stage = %q, want %q", got, StageVideoMetrics)
	}
	if h.orch.Running() {
		t.Error("orchestrator still running after failure")
	}
}

func TestOrchestratorNormalizesUntypedErrors(t *testing.T) {
	h := newHarness(t)
	h.store.errs["UpsertChannel"] = errors.New("disk full")

	_, err := h.orch.Run(context.Background(), h.request())
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an *apperror.Error", err)
	}
	if ae.Kind != apperror.KindUnknown || ae.Op != "sync stage channel" {
		t.Errorf("error = %+v, want UNKNOWN_ERROR from the channel stage", ae)
	}
	if h.store.finished[0].Checkpoint != "" {
		t.Errorf("checkpoint = %q, want empty", h.store.finished[0].Checkpoint)
	}
}

func TestOrchestratorSingleFlight(t *testing.T) {
	h := newHarness(t)
	h.provider.block = make(chan struct{})
	h.provider.entered = make(chan struct{}, 1)

	rejectedBefore := testutil.ToFloat64(metrics.SyncRunsTotal.WithLabelValues("rejected"))

	firstErr := make(chan error, 1)
	go func() {
		_, err := h.orch.Run(context.Background(), h.request())
		firstErr <- err
	}()

	select {
	case <-h.provider.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached the provider")
	}
	if !h.orch.Running() {
		t.Error("Running() = false during a run")
	}

	_, err := h.orch.Run(context.Background(), RunRequest{ChannelID: "UC1", Range: models.NewDateRange(fixedNow, 28)})
	if apperror.KindOf(err) != apperror.KindSyncFailed || !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("concurrent Run() error = %v, want SYNC_FAILED wrapping ErrSyncInProgress", err)
	}
	if got := testutil.ToFloat64(metrics.SyncRunsTotal.WithLabelValues("rejected")) - rejectedBefore; got != 1 {
		t.Errorf("rejected runs counted %v, want 1", got)
	}

	close(h.provider.block)
	select {
	case err := <-firstErr:
		if err != nil {
			t.Errorf("first Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
	if len(h.store.created) != 1 {
		t.Errorf("created runs = %d, want 1", len(h.store.created))
	}
}

func TestOrchestratorVideoMetricsWorkerPool(t *testing.T) {
	h := newHarness(t)
	h.provider.videoDelay = 10 * time.Millisecond
	h.provider.videos = nil
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("w%02d", i)
		h.provider.videos = append(h.provider.videos, models.Video{ID: id, PublishedAt: fixedNow.AddDate(0, 0, -i)})
	}

	result, err := h.orch.Run(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := h.provider.callCount("GetVideoDailyMetrics"); got != 10 {
		t.Errorf("video metric fetches = %d, want 10", got)
	}
	if got := h.provider.maxInflight.Load(); got > 3 {
		t.Errorf("max concurrent fetches = %d, want <= 3", got)
	}
	if result.VideoDays != 0 {
		t.Errorf("VideoDays = %d, want 0 for videos without metrics", result.VideoDays)
	}
}

func TestOrchestratorRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  RunRequest
	}{
		{"missing channel", RunRequest{Range: models.NewDateRange(fixedNow, 28)}},
		{"inverted range", RunRequest{ChannelID: "UC1", Range: models.DateRange{Start: fixedNow, End: fixedNow.AddDate(0, 0, -1)}}},
		{"empty range", RunRequest{ChannelID: "UC1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.orch.Run(context.Background(), tt.req)
			if apperror.KindOf(err) != apperror.KindValidation {
				t.Errorf("Run() error = %v, want VALIDATION_ERROR", err)
			}
			if len(h.store.created) != 0 {
				t.Error("run recorded for an invalid request")
			}
		})
	}
}

func TestOrchestratorCreateRunFailure(t *testing.T) {
	h := newHarness(t)
	h.store.errs["CreateSyncRun"] = errors.New("read-only database")

	if _, err := h.orch.Run(context.Background(), h.request()); err == nil {
		t.Fatal("Run() should fail")
	}
	if n := len(h.provider.calls); n != 0 {
		t.Errorf("provider called %d times after run creation failed", n)
	}
	if h.orch.Running() {
		t.Error("orchestrator still running")
	}
}

func TestOrchestratorSkipsTrainingWithShortHistory(t *testing.T) {
	h := newHarness(t)
	h.provider.channelMetrics = dailyValues("", fixedNow, 30, models.MetricViews, func(int) float64 { return 10 })

	result, err := h.orch.Run(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.trainer.calls != 0 || result.Training != nil {
		t.Error("models trained on 30 days of history")
	}
}

func TestDailyViewsSincePublish(t *testing.T) {
	published := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	day := models.Day(published)
	v := models.Video{ID: "v1", PublishedAt: published}

	// rows returns 100 views on each day offset in [from, to].
	rows := func(from, to int, skip ...int) models.Series {
		var out models.Series
	next:
		for d := from; d <= to; d++ {
			for _, s := range skip {
				if d == s {
					continue next
				}
			}
			out = append(out, models.Point{Date: day.AddDate(0, 0, d), Value: 100})
		}
		return out
	}

	tests := []struct {
		name    string
		history models.Series
		wantLen int
	}{
		{"full first four weeks", rows(0, 27), 28},
		{"gap after the curve window is zero filled", rows(0, 40, 35), 41},
		{"early life never synced", rows(10, 40), 0},
		{"gap inside the curve window", rows(0, 40, 6), 0},
		{"younger than a curve", rows(0, 20), 0},
		{"no history", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dailyViewsSincePublish(v, tt.history)
			if tt.wantLen == 0 {
				if got != nil {
					t.Errorf("dailyViewsSincePublish() = %v, want nil", got)
				}
				return
			}
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0] != 100 || got[27] != 100 {
				t.Errorf("day 1 = %v, day 28 = %v, want 100", got[0], got[27])
			}
		})
	}

	if got := dailyViewsSincePublish(v, rows(0, 40, 35)); got[35] != 0 {
		t.Errorf("day 36 = %v, want zero fill", got[35])
	}
}

func TestOrchestratorSkipsPartiallySyncedVideosInCurves(t *testing.T) {
	h := newHarness(t)
	// v1 now has rows only from day 10 after publish on.
	h.provider.videos[0].PublishedAt = models.Day(fixedNow).AddDate(0, 0, -39)

	result, err := h.orch.Run(context.Background(), h.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.CurvesFitted != 0 || len(h.curves.buckets) != 0 {
		t.Errorf("curves fitted = %d (buckets %v), want none", result.CurvesFitted, h.curves.buckets)
	}
}

func TestChannelViewSeriesFillsGaps(t *testing.T) {
	d := models.Day(fixedNow)
	rows := []models.ChannelDayMetric{
		{ChannelID: "UC1", Day: d, DayMetrics: models.DayMetrics{Views: 7}},
		{ChannelID: "UC1", Day: d.AddDate(0, 0, -3), DayMetrics: models.DayMetrics{Views: 4}},
	}
	got := channelViewSeries(rows)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if fmt.Sprint(got.Values()) != fmt.Sprint([]float64{4, 0, 0, 7}) {
		t.Errorf("values = %v", got.Values())
	}
	if !got[0].Date.Equal(d.AddDate(0, 0, -3)) {
		t.Errorf("first date = %v", got[0].Date)
	}
}
