// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package api serves the operational HTTP surface of Tubelytics using chi.

Routes:

	GET  /healthz              liveness, database ping, scheduler state
	GET  /metrics              Prometheus scrape endpoint
	GET  /api/v1/sync/status   active flag, last success, latest run
	POST /api/v1/sync/trigger  start a background run (202, or 409 if busy)
	GET  /api/v1/runs          run history (?limit=1..200)
	GET  /api/v1/runs/{id}     one run with stage timings
	GET  /api/v1/insights      newest insights (?channel_id, ?limit)
	GET  /api/v1/models        forecast model registry (?type)
	GET  /api/v1/forecast      active model forecast with band (?channel_id, ?type, ?horizon=1..90)
	GET  /api/v1/videos/{id}/nowcast  day-7 projection for a young video (?channel_id)
	POST /api/v1/query         read-only SELECT/WITH executor

Every JSON response uses the models.APIResponse envelope. Errors carry an
apperror kind (or NOT_FOUND, RATE_LIMITED) in error.code.

The /api/v1 group is rate limited per client IP with go-chi/httprate and
records request metrics by route pattern. Every request gets an
X-Request-ID that is added to the logging context.
*/
package api
