// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/tubelytics/internal/logging"
)

var (
	// ErrNotFound is returned by single-row lookups with no match.
	ErrNotFound = errors.New("not found")

	// ErrReadOnlyQuery is returned by Query for anything but SELECT or WITH,
	// and for statements that try to read files or URLs.
	ErrReadOnlyQuery = errors.New("only single SELECT or WITH statements are allowed")
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource on error paths where the close error is not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
