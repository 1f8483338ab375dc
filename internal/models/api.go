// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import "time"

// APIResponse is the envelope of every JSON API response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the error body of a failed request. Code is an apperror kind
// or one of the HTTP-level codes used by the API.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SyncStatus is the response of the sync status endpoint.
type SyncStatus struct {
	Running      bool       `json:"running"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	LastRun      *SyncRun   `json:"last_run,omitempty"`
}
