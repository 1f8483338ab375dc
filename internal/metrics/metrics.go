// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	DBRowsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_rows_upserted_total",
			Help: "Total number of rows written by batch upserts",
		},
		[]string{"table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Sync Pipeline Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of sync runs by final status",
		},
		[]string{"status"}, // "completed", "failed", "rejected"
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of full sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	SyncStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_stage_duration_seconds",
			Help:    "Duration of individual sync pipeline stages",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"stage"},
	)

	SyncStageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_stage_errors_total",
			Help: "Total number of sync stage failures by error kind",
		},
		[]string{"stage", "kind"},
	)

	SyncRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_processed_total",
			Help: "Total number of records persisted during sync",
		},
		[]string{"entity"}, // "video", "channel_metric", "video_metric", "snapshot"
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of last successful sync",
		},
	)

	SyncInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_in_progress",
			Help: "1 while a sync run is executing",
		},
	)

	// Data Provider Metrics
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of data provider requests",
		},
		[]string{"operation", "outcome"}, // outcome: "success", or an error kind
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Data provider request duration including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_retries_total",
			Help: "Total number of provider request retries by error kind",
		},
		[]string{"kind"},
	)

	RateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "provider_rate_limit_wait_seconds",
			Help:    "Time spent waiting for a rate limiter token",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Insight Metrics
	InsightPluginRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_plugin_runs_total",
			Help: "Total number of insight plugin executions",
		},
		[]string{"plugin", "outcome"}, // outcome: "success", "error", "panic"
	)

	InsightPluginDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_plugin_duration_seconds",
			Help:    "Duration of insight plugin executions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"plugin"},
	)

	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_generated_total",
			Help: "Total number of insights and alerts persisted",
		},
		[]string{"type", "kind"},
	)

	InsightPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_publish_errors_total",
			Help: "Total number of insight events that failed to publish",
		},
	)

	InsightEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_events_consumed_total",
			Help: "Total number of insight events handled by the event router",
		},
		[]string{"severity"},
	)

	// Forecast Metrics
	ForecastBacktestSMAPE = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forecast_backtest_smape",
			Help: "Latest backtested sMAPE per model",
		},
		[]string{"model_type", "model"},
	)

	ForecastPromotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_model_promotions_total",
			Help: "Total number of model activations by gate outcome",
		},
		[]string{"model_type", "model", "gate"}, // gate: "passed", "baseline"
	)

	ForecastTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecast_training_duration_seconds",
			Help:    "Duration of model registry training runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	// Analytics Metrics
	MomentumHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "momentum_hits_total",
			Help: "Total number of competitor hit days detected",
		},
	)

	GrowthCurveCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "growth_curve_cache_hits_total",
			Help: "Total number of growth curve cache hits",
		},
	)

	GrowthCurveCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "growth_curve_cache_misses_total",
			Help: "Total number of growth curve cache misses",
		},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordUpsert counts rows written by a batch upsert
func RecordUpsert(table string, rows int) {
	DBRowsUpserted.WithLabelValues(table).Add(float64(rows))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSyncRun records the outcome of a full sync run.
func RecordSyncRun(duration time.Duration, err error) {
	SyncDuration.Observe(duration.Seconds())
	if err != nil {
		SyncRunsTotal.WithLabelValues("failed").Inc()
		return
	}
	SyncRunsTotal.WithLabelValues("completed").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSyncRejected counts runs refused because another run was active.
func RecordSyncRejected() {
	SyncRunsTotal.WithLabelValues("rejected").Inc()
}

// RecordSyncStage records one pipeline stage. kind is empty on success.
func RecordSyncStage(stage string, duration time.Duration, kind string) {
	SyncStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if kind != "" {
		SyncStageErrors.WithLabelValues(stage, kind).Inc()
	}
}

// RecordSyncRecords counts persisted records of an entity type.
func RecordSyncRecords(entity string, n int) {
	SyncRecordsProcessed.WithLabelValues(entity).Add(float64(n))
}

// SetSyncInProgress toggles the in-progress gauge.
func SetSyncInProgress(running bool) {
	if running {
		SyncInProgress.Set(1)
		return
	}
	SyncInProgress.Set(0)
}

// RecordProviderRequest records one logical provider call. outcome is
// "success" or the error kind.
func RecordProviderRequest(operation, outcome string, duration time.Duration) {
	ProviderRequests.WithLabelValues(operation, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordProviderRetry counts a retry attempt.
func RecordProviderRetry(kind string) {
	ProviderRetries.WithLabelValues(kind).Inc()
}

// RecordRateLimitWait observes time spent blocked on the token bucket.
func RecordRateLimitWait(d time.Duration) {
	RateLimitWait.Observe(d.Seconds())
}

// RecordPluginRun records one insight plugin execution.
func RecordPluginRun(plugin, outcome string, duration time.Duration) {
	InsightPluginRuns.WithLabelValues(plugin, outcome).Inc()
	InsightPluginDuration.WithLabelValues(plugin).Observe(duration.Seconds())
}

// RecordInsight counts a persisted insight.
func RecordInsight(insightType, kind string) {
	InsightsGenerated.WithLabelValues(insightType, kind).Inc()
}

// RecordInsightEvent counts an insight event taken off the event bus.
func RecordInsightEvent(severity string) {
	InsightEventsConsumed.WithLabelValues(severity).Inc()
}

// RecordBacktest sets the latest backtest sMAPE for a model.
func RecordBacktest(modelType, model string, smape float64) {
	ForecastBacktestSMAPE.WithLabelValues(modelType, model).Set(smape)
}

// RecordPromotion counts a model activation.
func RecordPromotion(modelType, model string, gatePassed bool) {
	gate := "baseline"
	if gatePassed {
		gate = "passed"
	}
	ForecastPromotions.WithLabelValues(modelType, model, gate).Inc()
}
