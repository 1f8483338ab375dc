// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed by the operational HTTP server at /metrics.

# Available Metrics

Sync Pipeline:
  - sync_runs_total{status}: completed, failed and rejected runs
  - sync_duration_seconds: full run duration
  - sync_stage_duration_seconds{stage}: per-stage duration
  - sync_stage_errors_total{stage,kind}: stage failures by error kind
  - sync_records_processed_total{entity}: persisted rows per entity type
  - sync_last_success_timestamp, sync_in_progress

Data Provider:
  - provider_requests_total{operation,outcome}
  - provider_request_duration_seconds{operation}
  - provider_retries_total{kind}
  - provider_rate_limit_wait_seconds
  - circuit_breaker_* (state, requests, consecutive failures, transitions)

Analytics:
  - insight_plugin_runs_total{plugin,outcome}, insight_plugin_duration_seconds{plugin}
  - insights_generated_total{type,kind}, insight_publish_errors_total
  - forecast_backtest_smape{model_type,model}
  - forecast_model_promotions_total{model_type,model,gate}
  - momentum_hits_total, growth_curve_cache_{hits,misses}_total

Database:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table}
  - duckdb_rows_upserted_total{table}

# Usage

	start := time.Now()
	err := runStage(ctx)
	metrics.RecordSyncStage("videos", time.Since(start), "")
*/
package metrics
