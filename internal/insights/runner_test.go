// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	r, err := NewRegistry(stubPlugin{name: "a"}, stubPlugin{name: "b"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := r.Register(stubPlugin{name: "a"}); err == nil {
		t.Error("Register() duplicate should fail")
	}
	if err := r.Register(stubPlugin{}); err == nil {
		t.Error("Register() unnamed plugin should fail")
	}
	if got := r.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", got)
	}

	if _, err := NewRegistry(stubPlugin{name: "x"}, stubPlugin{name: "x"}); err == nil {
		t.Error("NewRegistry() with duplicates should fail")
	}
}

func TestStandardRegistry(t *testing.T) {
	r, err := NewStandardRegistry(Options{})
	if err != nil {
		t.Fatalf("NewStandardRegistry() error = %v", err)
	}
	want := []string{
		"top_movers", "ctr_bottleneck", "anomaly_days", "sleeper_videos",
		"quality_ranking", "ctr_drop_alert", "competitor_hit_gap", "trend_break",
	}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunnerIsolatesFailures(t *testing.T) {
	good := stubPlugin{name: "good", insights: []models.Insight{
		{Type: "good", Title: "first"},
		{Type: "good", Kind: models.KindAlert, Severity: models.SeverityCritical, Title: "second"},
	}}
	reg, err := NewRegistry(
		stubPlugin{name: "erroring", err: errPlugin},
		stubPlugin{name: "panicking", panics: true},
		good,
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	store := &mockStore{}
	runner := NewRunner(reg, store, nil)
	fixed := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	runner.now = func() time.Time { return fixed }

	panicsBefore := testutil.ToFloat64(metrics.InsightPluginRuns.WithLabelValues("panicking", outcomePanic))

	summary, err := runner.Run(context.Background(), testContext(&mockData{}, 28))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Plugins != 3 || summary.Succeeded != 1 || summary.Failed != 2 {
		t.Errorf("summary = %+v, want 3 plugins, 1 succeeded, 2 failed", summary)
	}
	if summary.Insights != 2 || summary.Alerts != 1 {
		t.Errorf("summary = %+v, want 2 insights, 1 alert", summary)
	}
	if _, ok := summary.Errors["panicking"]; !ok {
		t.Errorf("Errors = %v, want panicking entry", summary.Errors)
	}

	if len(store.saved) != 2 {
		t.Fatalf("saved %d insights, want 2", len(store.saved))
	}
	first := store.saved[0]
	if first.ID == "" || first.RunID != "run-1" || first.ChannelID != "UC1" {
		t.Errorf("insight not stamped: %+v", first)
	}
	if first.Kind != models.KindInsight || first.Severity != models.SeverityInfo {
		t.Errorf("defaults not applied: kind=%q severity=%q", first.Kind, first.Severity)
	}
	if !first.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", first.CreatedAt, fixed)
	}
	if store.saved[1].Severity != models.SeverityCritical {
		t.Errorf("explicit severity overwritten: %q", store.saved[1].Severity)
	}

	panicsAfter := testutil.ToFloat64(metrics.InsightPluginRuns.WithLabelValues("panicking", outcomePanic))
	if panicsAfter-panicsBefore != 1 {
		t.Errorf("panic runs counted %v, want 1", panicsAfter-panicsBefore)
	}
}

func TestRunnerStoreFailure(t *testing.T) {
	reg, err := NewRegistry(stubPlugin{name: "good", insights: []models.Insight{{Type: "good"}}})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	storeErr := errors.New("disk full")
	runner := NewRunner(reg, &mockStore{err: storeErr}, nil)

	if _, err := runner.Run(context.Background(), testContext(&mockData{}, 28)); !errors.Is(err, storeErr) {
		t.Errorf("Run() error = %v, want %v", err, storeErr)
	}
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	reg, err := NewRegistry(stubPlugin{name: "good", insights: []models.Insight{{Type: "good"}}})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	store := &mockStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRunner(reg, store, nil).Run(ctx, testContext(&mockData{}, 28)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d insights after cancellation", len(store.saved))
	}
}

func TestRunnerPublishesInsights(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, watermill.NopLogger{})
	defer func() { _ = pubsub.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msgs, err := pubsub.Subscribe(ctx, TopicInsightCreated)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	reg, err := NewRegistry(stubPlugin{name: "good", insights: []models.Insight{
		{Type: "good", Kind: models.KindAlert, Title: "published"},
	}})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	store := &mockStore{}
	if _, err := NewRunner(reg, store, pubsub).Run(ctx, testContext(&mockData{}, 28)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if msg.UUID != store.saved[0].ID {
			t.Errorf("message UUID = %q, want insight id %q", msg.UUID, store.saved[0].ID)
		}
		if msg.Metadata.Get("kind") != models.KindAlert || msg.Metadata.Get("run_id") != "run-1" {
			t.Errorf("metadata = %v", msg.Metadata)
		}
		var got models.Insight
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.Title != "published" {
			t.Errorf("payload title = %q", got.Title)
		}
	case <-ctx.Done():
		t.Fatal("no insight event received")
	}
}
