// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/tubelytics/internal/apperror"
)

// mockRunner is a Runner that records requests.
type mockRunner struct {
	mu       gosync.Mutex
	requests []RunRequest
	err      error
	running  atomic.Bool
	ran      chan struct{}
}

func newMockRunner() *mockRunner {
	return &mockRunner{ran: make(chan struct{}, 16)}
}

func (m *mockRunner) Run(_ context.Context, req RunRequest) (*RunResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	err := m.err
	m.mu.Unlock()
	m.ran <- struct{}{}
	if err != nil {
		return &RunResult{}, err
	}
	return &RunResult{Videos: 3}, nil
}

func (m *mockRunner) Running() bool { return m.running.Load() }

func (m *mockRunner) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func waitForRun(t *testing.T, r *mockRunner) {
	t.Helper()
	select {
	case <-r.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a sync run")
	}
}

func TestSchedulerTriggerSync(t *testing.T) {
	runner := newMockRunner()
	s := NewScheduler(runner, ScheduleConfig{ChannelID: "UC1", CompetitorIDs: []string{"UC2"}, LookbackDays: 7})
	s.now = func() time.Time { return fixedNow }

	if !s.LastSyncTime().IsZero() {
		t.Fatal("LastSyncTime() should be zero before the first run")
	}

	result, err := s.TriggerSync(context.Background())
	if err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}
	if result.Videos != 3 {
		t.Errorf("result.Videos = %d, want 3", result.Videos)
	}
	if !s.LastSyncTime().Equal(fixedNow) {
		t.Errorf("LastSyncTime() = %v, want %v", s.LastSyncTime(), fixedNow)
	}

	req := runner.requests[0]
	if req.ChannelID != "UC1" || len(req.CompetitorIDs) != 1 {
		t.Errorf("request = %+v", req)
	}
	if days := req.Range.Days(); days != 7 {
		t.Errorf("request range covers %d days, want 7", days)
	}
}

func TestSchedulerRecordsFailure(t *testing.T) {
	runner := newMockRunner()
	runner.err = apperror.New(apperror.KindAuth, "sync stage channel", "denied")
	s := NewScheduler(runner, ScheduleConfig{ChannelID: "UC1"})

	if _, err := s.TriggerSync(context.Background()); err == nil {
		t.Fatal("TriggerSync() should return the run error")
	}
	if !s.LastSyncTime().IsZero() {
		t.Error("a failed run must not update LastSyncTime()")
	}
	result, err := s.LastRun()
	if result == nil || apperror.KindOf(err) != apperror.KindAuth {
		t.Errorf("LastRun() = %v, %v", result, err)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	runner := newMockRunner()
	s := NewScheduler(runner, ScheduleConfig{ChannelID: "UC1", Interval: 10 * time.Millisecond})

	if err := s.Stop(); err == nil {
		t.Error("Stop() on a stopped scheduler should fail")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	waitForRun(t, runner)
	waitForRun(t, runner)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	after := runner.count()
	time.Sleep(30 * time.Millisecond)
	if runner.count() != after {
		t.Error("scheduler kept running after Stop()")
	}

	// The scheduler can be restarted.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() after restart error = %v", err)
	}
}

func TestSchedulerRunOnStartup(t *testing.T) {
	runner := newMockRunner()
	s := NewScheduler(runner, ScheduleConfig{ChannelID: "UC1", RunOnStartup: true})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForRun(t, runner)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := runner.count(); got != 1 {
		t.Errorf("runs = %d, want 1 (no interval configured)", got)
	}
}

func TestSchedulerTriggerAsync(t *testing.T) {
	runner := newMockRunner()
	s := NewScheduler(runner, ScheduleConfig{ChannelID: "UC1"})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })

	if err := s.TriggerAsync(); err != nil {
		t.Fatalf("TriggerAsync() error = %v", err)
	}
	waitForRun(t, runner)

	runner.running.Store(true)
	err := s.TriggerAsync()
	if !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("TriggerAsync() while running error = %v, want ErrSyncInProgress", err)
	}
	if apperror.KindOf(err) != apperror.KindSyncFailed {
		t.Errorf("KindOf() = %s, want SYNC_FAILED", apperror.KindOf(err))
	}
	if !s.Running() {
		t.Error("Running() = false, want true")
	}
}

// gatedRunner blocks every run until release is closed and never reports
// itself as running, so only the scheduler can keep triggers apart.
type gatedRunner struct {
	started atomic.Int32
	release chan struct{}
}

func (g *gatedRunner) Run(ctx context.Context, _ RunRequest) (*RunResult, error) {
	g.started.Add(1)
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return &RunResult{}, nil
}

func (g *gatedRunner) Running() bool { return false }

func TestSchedulerTriggerAsyncSingleFlight(t *testing.T) {
	runner := &gatedRunner{release: make(chan struct{})}
	s := NewScheduler(runner, ScheduleConfig{ChannelID: "UC1"})

	if err := s.TriggerAsync(); !errors.Is(err, ErrSchedulerStopped) {
		t.Errorf("TriggerAsync() before Start error = %v, want ErrSchedulerStopped", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	const callers = 16
	var (
		wg       gosync.WaitGroup
		accepted atomic.Int32
		busy     atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.TriggerAsync(); {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrSyncInProgress):
				busy.Add(1)
			default:
				t.Errorf("TriggerAsync() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted.Load() != 1 || busy.Load() != callers-1 {
		t.Errorf("accepted = %d busy = %d, want 1 and %d", accepted.Load(), busy.Load(), callers-1)
	}
	if !s.Running() {
		t.Error("Running() = false while a triggered run is pending")
	}

	close(runner.release)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := runner.started.Load(); got != 1 {
		t.Errorf("runs started = %d, want 1", got)
	}
	if s.Running() {
		t.Error("Running() = true after the triggered run finished")
	}

	err := s.TriggerAsync()
	if !errors.Is(err, ErrSchedulerStopped) || apperror.KindOf(err) != apperror.KindSyncFailed {
		t.Errorf("TriggerAsync() after Stop error = %v, want SYNC_FAILED ErrSchedulerStopped", err)
	}
}
