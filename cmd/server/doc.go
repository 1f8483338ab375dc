// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package main is the entry point for the Tubelytics server.

Tubelytics syncs a YouTube channel (and optional competitor channels) into
DuckDB, then derives growth curves, quality scores, momentum, forecasts and
insights on every run.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("tubelytics")
	├── MessagingSupervisor ("messaging-layer")
	│   └── Insight event router (when insights.publish is on)
	├── SyncSupervisor ("sync-layer")
	│   └── Sync scheduler (periodic and on-demand runs)
	└── APISupervisor ("api-layer")
	    └── HTTP server (health, metrics, ops API)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB schema and connection pool
 4. Provider: YouTube Data and Analytics APIs behind a circuit breaker
 5. Analytics: forecast registry, nowcast engine, insight plugins
 6. Orchestrator and scheduler
 7. HTTP server: chi router with middleware stack
 8. Supervisor tree

# Configuration

Priority: environment variables > config file > defaults.

	YOUTUBE_API_KEY=<key>           # or YOUTUBE_OAUTH_TOKEN for private analytics
	YOUTUBE_CHANNEL_ID=UC...        # required
	YOUTUBE_COMPETITOR_IDS=UCa,UCb  # comma-separated
	SYNC_INTERVAL=6h                # 0 disables periodic runs
	SYNC_LOOKBACK_DAYS=28
	DUCKDB_PATH=/data/tubelytics.duckdb
	HTTP_PORT=8480
	LOG_LEVEL=info
	LOG_FORMAT=json

CONFIG_PATH points at a YAML file; see internal/config for every key.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server, waits for an in-flight sync run to finish its current stage, closes
the event router, and then the database is checkpointed and closed.
*/
package main
