// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package logging provides the zerolog-based structured logger used across Tubelytics.

The package keeps a single global logger configured once at startup from the
logging section of the configuration. Components log through the package-level
helpers, or through Ctx when a context carries a sync run ID or HTTP request ID.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("channel_id", id).Msg("Sync scheduled")
	logging.Ctx(ctx).Warn().Err(err).Str("stage", "videos").Msg("Stage retry")

# Run Correlation

The sync orchestrator stores the run ID in the context before executing any
stage. Every log line written through Ctx then carries a run_id field:

	ctx = logging.ContextWithRunID(ctx, run.ID)
	logging.Ctx(ctx).Info().Msg("Stage completed")
	// {"level":"info","run_id":"...","message":"Stage completed"}

# Supervisor Integration

Suture v4 logs through log/slog. NewSlogLogger returns an slog.Logger backed
by the global zerolog logger so supervisor events land in the same stream:

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}

# Levels

Supported levels are trace, debug, info, warn, error, fatal, panic and
disabled. Unknown values fall back to info.
*/
package logging
