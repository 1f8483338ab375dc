// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/database"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/sync"
	"github.com/tomtom215/tubelytics/internal/validation"
)

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// respondValidation writes a 400 with per-field details.
func respondValidation(w http.ResponseWriter, err error) {
	details := map[string]interface{}{}
	for _, fe := range validation.FieldErrors(err) {
		details[fe.Field] = fe.Message
	}
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    string(apperror.KindValidation),
			Message: err.Error(),
			Details: details,
		},
	})
}

// respondFailure maps a domain error to a status code.
func respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, sync.ErrVideoNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, sync.ErrSyncInProgress):
		respondError(w, http.StatusConflict, string(apperror.KindSyncFailed), "A sync run is already in progress", nil)
	case errors.Is(err, sync.ErrSchedulerStopped):
		respondError(w, http.StatusServiceUnavailable, string(apperror.KindSyncFailed), "The sync scheduler is not running", nil)
	case errors.Is(err, database.ErrReadOnlyQuery):
		respondError(w, http.StatusBadRequest, string(apperror.KindValidation), err.Error(), nil)
	case apperror.KindOf(err) == apperror.KindValidation:
		respondError(w, http.StatusBadRequest, string(apperror.KindValidation), err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, string(apperror.Normalize(err).Kind), "Internal server error", err)
	}
}

// intParam parses an integer query parameter, returning def when absent and
// an error when malformed.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Newf(apperror.KindValidation, "parse query", "%s must be an integer", name)
	}
	return v, nil
}
