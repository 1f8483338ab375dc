// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getHistogram extracts the sample count and sum from a histogram.
func getHistogram(t *testing.T, h prometheus.Observer) (uint64, float64) {
	t.Helper()
	metric, ok := h.(prometheus.Metric)
	if !ok {
		t.Fatalf("%T is not a prometheus.Metric", h)
	}
	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert", "test_table"))

	RecordDBQuery("upsert", "test_table", 10*time.Millisecond, nil)
	RecordDBQuery("upsert", "test_table", 10*time.Millisecond, errors.New("constraint"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("upsert", "test_table"))
	if after-before != 1 {
		t.Errorf("expected one error recorded, got %v", after-before)
	}
}

func TestRecordSyncRun(t *testing.T) {
	completed := testutil.ToFloat64(SyncRunsTotal.WithLabelValues("completed"))
	failed := testutil.ToFloat64(SyncRunsTotal.WithLabelValues("failed"))

	RecordSyncRun(time.Second, nil)
	RecordSyncRun(time.Second, errors.New("stage failed"))

	if got := testutil.ToFloat64(SyncRunsTotal.WithLabelValues("completed")) - completed; got != 1 {
		t.Errorf("completed delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SyncRunsTotal.WithLabelValues("failed")) - failed; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
	if testutil.ToFloat64(SyncLastSuccess) == 0 {
		t.Error("last success timestamp should be set")
	}
}

func TestRecordSyncStage(t *testing.T) {
	before := testutil.ToFloat64(SyncStageErrors.WithLabelValues("videos", "NETWORK_ERROR"))

	RecordSyncStage("videos", 50*time.Millisecond, "")
	RecordSyncStage("videos", 50*time.Millisecond, "NETWORK_ERROR")

	if got := testutil.ToFloat64(SyncStageErrors.WithLabelValues("videos", "NETWORK_ERROR")) - before; got != 1 {
		t.Errorf("stage error delta = %v, want 1", got)
	}
}

func TestRecordSyncStageObservesDuration(t *testing.T) {
	obs := SyncStageDuration.WithLabelValues("curves")
	count, sum := getHistogram(t, obs)

	RecordSyncStage("curves", 250*time.Millisecond, "")
	RecordSyncStage("curves", 750*time.Millisecond, "")

	gotCount, gotSum := getHistogram(t, obs)
	if gotCount-count != 2 {
		t.Errorf("sample count delta = %d, want 2", gotCount-count)
	}
	if d := gotSum - sum; d < 0.999 || d > 1.001 {
		t.Errorf("sample sum delta = %v, want 1", d)
	}
}

func TestSetSyncInProgress(t *testing.T) {
	SetSyncInProgress(true)
	if testutil.ToFloat64(SyncInProgress) != 1 {
		t.Error("expected gauge 1 while running")
	}
	SetSyncInProgress(false)
	if testutil.ToFloat64(SyncInProgress) != 0 {
		t.Error("expected gauge 0 after run")
	}
}

func TestRecordPromotion(t *testing.T) {
	tests := []struct {
		name   string
		passed bool
		gate   string
	}{
		{"gate passed", true, "passed"},
		{"baseline kept", false, "baseline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ForecastPromotions.WithLabelValues("channel_views", "HoltWinters", tt.gate)
			before := testutil.ToFloat64(c)
			RecordPromotion("channel_views", "HoltWinters", tt.passed)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("promotion delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordPluginRunAndInsight(t *testing.T) {
	runs := InsightPluginRuns.WithLabelValues("top_movers", "success")
	before := testutil.ToFloat64(runs)
	RecordPluginRun("top_movers", "success", time.Millisecond)
	if got := testutil.ToFloat64(runs) - before; got != 1 {
		t.Errorf("plugin run delta = %v, want 1", got)
	}

	gen := InsightsGenerated.WithLabelValues("ctr_drop", "alert")
	before = testutil.ToFloat64(gen)
	RecordInsight("ctr_drop", "alert")
	if got := testutil.ToFloat64(gen) - before; got != 1 {
		t.Errorf("insight delta = %v, want 1", got)
	}
}

func TestProviderMetrics(t *testing.T) {
	RecordProviderRequest("get_channel", "success", 20*time.Millisecond)
	RecordRateLimitWait(5 * time.Millisecond)

	retries := ProviderRetries.WithLabelValues("QUOTA_EXCEEDED")
	before := testutil.ToFloat64(retries)
	RecordProviderRetry("QUOTA_EXCEEDED")
	if got := testutil.ToFloat64(retries) - before; got != 1 {
		t.Errorf("retry delta = %v, want 1", got)
	}
}

func TestMetricsLint(t *testing.T) {
	RecordBacktest("channel_views", "Naive", 12.5)
	RecordUpsert("videos", 3)
	RecordSyncRecords("video", 3)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint failed: %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint problem in %s: %s", p.Metric, p.Text)
	}
}
