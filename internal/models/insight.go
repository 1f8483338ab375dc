// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import (
	"encoding/json"
	"time"
)

// Insight kinds. Alerts are insights that call for action.
const (
	KindInsight = "insight"
	KindAlert   = "alert"
)

// Insight severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Insight is an immutable analyzer finding tagged with the run that produced it.
type Insight struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	ChannelID   string          `json:"channel_id"`
	Kind        string          `json:"kind"`
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Evidence    json.RawMessage `json:"evidence,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
