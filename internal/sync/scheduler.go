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

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/config"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/models"
)

// ErrSchedulerStopped is returned by TriggerAsync before Start or after Stop.
var ErrSchedulerStopped = errors.New("sync scheduler is not running")

// Runner executes one sync run; satisfied by *Orchestrator.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
	Running() bool
}

// ScheduleConfig configures the scheduler.
type ScheduleConfig struct {
	ChannelID     string
	CompetitorIDs []string
	// Interval between runs. Zero disables periodic runs.
	Interval     time.Duration
	LookbackDays int
	RunOnStartup bool
}

// ScheduleConfigFromConfig derives a ScheduleConfig from the application config.
func ScheduleConfigFromConfig(cfg *config.Config) ScheduleConfig {
	return ScheduleConfig{
		ChannelID:     cfg.YouTube.ChannelID,
		CompetitorIDs: cfg.YouTube.CompetitorIDs,
		Interval:      cfg.Sync.Interval,
		LookbackDays:  cfg.Sync.LookbackDays,
		RunOnStartup:  cfg.Sync.RunOnStartup,
	}
}

// Scheduler runs the orchestrator periodically and on demand.
//
// Thread Safety:
//   - mu protects running, triggered, lastSync, lastResult and lastErr
//   - the orchestrator's own single-flight guard rejects overlapping runs
//   - background goroutines are tracked by wg and drained by Stop; wg.Add
//     only happens under mu while running is true
type Scheduler struct {
	runner Runner
	cfg    ScheduleConfig
	now    func() time.Time

	mu         gosync.RWMutex
	running    bool
	triggered  bool
	baseCtx    context.Context
	stopChan   chan struct{}
	wg         gosync.WaitGroup
	lastSync   time.Time
	lastResult *RunResult
	lastErr    error
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(runner Runner, cfg ScheduleConfig) *Scheduler {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 28
	}
	logging.Info().
		Str("channel_id", cfg.ChannelID).
		Int("competitors", len(cfg.CompetitorIDs)).
		Dur("interval", cfg.Interval).
		Int("lookback_days", cfg.LookbackDays).
		Msg("Sync scheduler config loaded")
	return &Scheduler{runner: runner, cfg: cfg, now: time.Now}
}

// Start begins periodic runs and, if configured, an initial run. It returns
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sync scheduler is already running")
	}
	s.running = true
	s.baseCtx = ctx
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	logging.Info().Msg("Starting sync scheduler...")

	if s.cfg.RunOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := s.runOnce(ctx); err != nil {
				logging.Warn().Err(err).Msg("Initial sync failed (will retry on schedule)")
			}
		}()
	}

	if s.cfg.Interval > 0 {
		s.wg.Add(1)
		go s.loop(ctx, stop)
	} else {
		logging.Info().Msg("Periodic sync disabled (interval is zero), manual triggers only")
	}
	return nil
}

// Stop halts periodic runs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("sync scheduler is not running")
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	logging.Info().Msg("Stopping sync scheduler...")
	s.wg.Wait()
	logging.Info().Msg("Sync scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if _, err := s.runOnce(ctx); err != nil {
				logging.Error().Err(err).Msg("Scheduled sync failed")
			}
		}
	}
}

// TriggerSync runs a sync now and waits for it.
func (s *Scheduler) TriggerSync(ctx context.Context) (*RunResult, error) {
	return s.runOnce(ctx)
}

// TriggerAsync starts a sync in the background. It fails with a
// SYNC_FAILED error when a run is already active or a triggered run has not
// finished, and with ErrSchedulerStopped when the scheduler is not started.
func (s *Scheduler) TriggerAsync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return apperror.Wrap(apperror.KindSyncFailed, "trigger sync", ErrSchedulerStopped)
	}
	if s.triggered || s.runner.Running() {
		return apperror.Wrap(apperror.KindSyncFailed, "trigger sync", ErrSyncInProgress)
	}
	s.triggered = true
	ctx := s.baseCtx

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.triggered = false
			s.mu.Unlock()
		}()
		if _, err := s.runOnce(ctx); err != nil {
			logging.Error().Err(err).Msg("Triggered sync failed")
		}
	}()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) (*RunResult, error) {
	req := RunRequest{
		ChannelID:     s.cfg.ChannelID,
		CompetitorIDs: s.cfg.CompetitorIDs,
		Range:         models.NewDateRange(s.now(), s.cfg.LookbackDays),
		Progress: func(p models.Progress) {
			logging.Debug().Str("stage", p.Stage).Int("percent", p.Percent).Msg(p.Message)
		},
	}
	result, err := s.runner.Run(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if result != nil {
		s.lastResult = result
	}
	if err == nil {
		s.lastSync = s.now()
	}
	return result, err
}

// Running reports whether a sync run is active or a triggered run is about
// to start.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	triggered := s.triggered
	s.mu.RUnlock()
	return triggered || s.runner.Running()
}

// LastSyncTime returns the time of the last successful run.
func (s *Scheduler) LastSyncTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// LastRun returns the result and error of the most recent run.
func (s *Scheduler) LastRun() (*RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult, s.lastErr
}
