// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import "time"

// Sync run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SyncRun records one orchestrator execution. Checkpoint is the last completed
// stage name and is kept for diagnostics only.
type SyncRun struct {
	ID         string      `json:"id"`
	ChannelID  string      `json:"channel_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Status     string      `json:"status"`
	Checkpoint string      `json:"checkpoint"`
	Error      string      `json:"error,omitempty"`
	Stages     []StagePerf `json:"stages,omitempty"`
}

// StagePerf is the performance record of one pipeline stage.
type StagePerf struct {
	Stage     string        `json:"stage"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// Progress is emitted synchronously at stage boundaries.
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	SyncRunning       bool       `json:"sync_running"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}
