// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package services

import (
	"context"
	"fmt"
)

// StartStopScheduler matches the sync.Scheduler lifecycle.
type StartStopScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService wraps the sync scheduler as a supervised service.
//
// Serve calls Start, waits for cancellation, then calls Stop. The scheduler
// tracks its own goroutines, so Stop returns only after any in-flight run
// has finished.
type SyncService struct {
	scheduler StartStopScheduler
	name      string
}

// NewSyncService creates a new sync service wrapper.
//
//	scheduler := sync.NewScheduler(orchestrator, sync.ScheduleConfigFromConfig(cfg))
//	tree.AddSyncService(services.NewSyncService(scheduler))
func NewSyncService(scheduler StartStopScheduler) *SyncService {
	return &SyncService{
		scheduler: scheduler,
		name:      "sync-scheduler",
	}
}

// Serve implements suture.Service. A Start failure is returned so suture
// restarts the service under its backoff policy.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("sync scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("sync scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *SyncService) String() string {
	return s.name
}
