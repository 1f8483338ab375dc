// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/database"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/validation"
)

// Store is the read side of the database used by the API.
type Store interface {
	Ping(ctx context.Context) error
	ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
	GetSyncRun(ctx context.Context, id string) (*models.SyncRun, error)
	ListInsights(ctx context.Context, channelID string, limit int) ([]models.Insight, error)
	ListModels(ctx context.Context, modelType string) ([]models.ForecastModelRecord, error)
	Query(ctx context.Context, query string, maxRows int) (*database.QueryResult, error)
}

// SyncController is the scheduler surface; satisfied by *sync.Scheduler.
type SyncController interface {
	TriggerAsync() error
	Running() bool
	LastSyncTime() time.Time
}

// Projector serves on-demand projections; satisfied by *sync.Projector.
type Projector interface {
	ChannelForecast(ctx context.Context, channelID, modelType string, horizon int) (*models.ChannelForecast, error)
	VideoNowcast(ctx context.Context, channelID, videoID string) (*models.VideoNowcast, error)
}

// Handler serves the operational API.
type Handler struct {
	store     Store
	sync      SyncController
	projector Projector
	channelID string
	modelType string
	version   string
	startTime time.Time
}

// HandlerConfig holds handler defaults.
type HandlerConfig struct {
	// ChannelID is used when a request does not name a channel.
	ChannelID string
	// ModelType is used when a request does not name a model type.
	ModelType string
	Version   string
}

// NewHandler creates a handler.
func NewHandler(store Store, syncCtl SyncController, projector Projector, cfg HandlerConfig) *Handler {
	if cfg.ModelType == "" {
		cfg.ModelType = "channel_views"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		store:     store,
		sync:      syncCtl,
		projector: projector,
		channelID: cfg.ChannelID,
		modelType: cfg.ModelType,
		version:   cfg.Version,
		startTime: time.Now(),
	}
}

// Health reports liveness plus database and scheduler state. A failed
// database ping returns 503 with status "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := models.HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: true,
		SyncRunning:       h.sync.Running(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if last := h.sync.LastSyncTime(); !last.IsZero() {
		status.LastSyncTime = &last
	}

	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check database ping failed")
		status.Status = "degraded"
		status.DatabaseConnected = false
		code = http.StatusServiceUnavailable
	}
	respondData(w, code, status, start)
}

// SyncStatus returns whether a run is active and the most recent run.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	out := models.SyncStatus{Running: h.sync.Running()}
	if last := h.sync.LastSyncTime(); !last.IsZero() {
		out.LastSyncTime = &last
	}
	runs, err := h.store.ListSyncRuns(r.Context(), 1)
	if err != nil {
		respondFailure(w, err)
		return
	}
	if len(runs) > 0 {
		out.LastRun = &runs[0]
	}
	respondData(w, http.StatusOK, out, start)
}

// TriggerSync starts a background run: 202 when accepted, 409 when a run is
// already active.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.sync.TriggerAsync(); err != nil {
		respondFailure(w, err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Sync triggered via API")
	respondData(w, http.StatusAccepted, map[string]string{"message": "sync started"}, start)
}

// listRunsRequest bounds the run history page.
type listRunsRequest struct {
	Limit int `validate:"min=1,max=200"`
}

// ListRuns returns recent sync runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		respondFailure(w, err)
		return
	}
	req := listRunsRequest{Limit: limit}
	if err := validation.ValidateStruct(&req); err != nil {
		respondValidation(w, err)
		return
	}
	runs, err := h.store.ListSyncRuns(r.Context(), req.Limit)
	if err != nil {
		respondFailure(w, err)
		return
	}
	if runs == nil {
		runs = []models.SyncRun{}
	}
	respondData(w, http.StatusOK, runs, start)
}

// GetRun returns one sync run with its stage timings.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	run, err := h.store.GetSyncRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, run, start)
}

type listInsightsRequest struct {
	ChannelID string `validate:"required"`
	Limit     int    `validate:"min=1,max=500"`
}

// ListInsights returns the newest insights of a channel.
func (h *Handler) ListInsights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, err := intParam(r, "limit", 100)
	if err != nil {
		respondFailure(w, err)
		return
	}
	req := listInsightsRequest{ChannelID: r.URL.Query().Get("channel_id"), Limit: limit}
	if req.ChannelID == "" {
		req.ChannelID = h.channelID
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondValidation(w, err)
		return
	}
	found, err := h.store.ListInsights(r.Context(), req.ChannelID, req.Limit)
	if err != nil {
		respondFailure(w, err)
		return
	}
	if found == nil {
		found = []models.Insight{}
	}
	respondData(w, http.StatusOK, found, start)
}

// ListModels returns the registry history of a model type.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	modelType := r.URL.Query().Get("type")
	if modelType == "" {
		modelType = h.modelType
	}
	records, err := h.store.ListModels(r.Context(), modelType)
	if err != nil {
		respondFailure(w, err)
		return
	}
	if records == nil {
		records = []models.ForecastModelRecord{}
	}
	respondData(w, http.StatusOK, records, start)
}

type forecastRequest struct {
	ChannelID string `validate:"required"`
	ModelType string `validate:"required"`
	Horizon   int    `validate:"min=1,max=90"`
}

// Forecast returns the active model's channel views forecast with its
// backtest confidence band.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	horizon, err := intParam(r, "horizon", 28)
	if err != nil {
		respondFailure(w, err)
		return
	}
	req := forecastRequest{
		ChannelID: r.URL.Query().Get("channel_id"),
		ModelType: r.URL.Query().Get("type"),
		Horizon:   horizon,
	}
	if req.ChannelID == "" {
		req.ChannelID = h.channelID
	}
	if req.ModelType == "" {
		req.ModelType = h.modelType
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondValidation(w, err)
		return
	}
	out, err := h.projector.ChannelForecast(r.Context(), req.ChannelID, req.ModelType, req.Horizon)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, out, start)
}

// Nowcast projects one video's day-7 views from its channel's growth curve.
func (h *Handler) Nowcast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		channelID = h.channelID
	}
	out, err := h.projector.VideoNowcast(r.Context(), channelID, chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, out, start)
}

// QueryRequest is the body of the read-only query endpoint.
type QueryRequest struct {
	SQL     string `json:"sql" validate:"required,max=10000"`
	MaxRows int    `json:"max_rows" validate:"min=0,max=10000"`
}

// Query executes a read-only SELECT/WITH statement against the store.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, string(apperror.KindValidation), "Invalid JSON body", nil)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondValidation(w, err)
		return
	}
	res, err := h.store.Query(r.Context(), req.SQL, req.MaxRows)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, res, start)
}
