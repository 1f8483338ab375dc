// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a chi router.
//
//	GET  /healthz
//	GET  /metrics
//	GET  /api/v1/sync/status
//	POST /api/v1/sync/trigger
//	GET  /api/v1/runs
//	GET  /api/v1/runs/{id}
//	GET  /api/v1/insights
//	GET  /api/v1/models
//	GET  /api/v1/forecast
//	GET  /api/v1/videos/{id}/nowcast
//	POST /api/v1/query
func NewRouter(h *Handler, cfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg))

	// Probes and scrapes are not rate limited.
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg))
		r.Use(PrometheusMetrics)

		r.Get("/sync/status", h.SyncStatus)
		r.Post("/sync/trigger", h.TriggerSync)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)
		r.Get("/insights", h.ListInsights)
		r.Get("/models", h.ListModels)
		r.Get("/forecast", h.Forecast)
		r.Get("/videos/{id}/nowcast", h.Nowcast)
		r.Post("/query", h.Query)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})
	return r
}
