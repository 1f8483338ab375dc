// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package config loads and validates the Tubelytics configuration.

Configuration is layered with koanf. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/tubelytics/config.yaml
 3. Environment variables mapped explicitly in envMappings

Unmapped environment variables are ignored.

# Environment Variables

YouTube provider:
  - YOUTUBE_API_KEY: Data API key for public channel and video reads
  - YOUTUBE_OAUTH_TOKEN: OAuth access token for the Analytics API
  - YOUTUBE_CHANNEL_ID: owned channel to sync (required)
  - YOUTUBE_COMPETITOR_IDS: comma-separated competitor channel IDs
  - YOUTUBE_RATE_CAPACITY, YOUTUBE_RATE_REFILL: token bucket (default 10, 1/s)
  - YOUTUBE_MAX_RETRIES, YOUTUBE_RETRY_BASE_DELAY: backoff (default 3, 1s)

Sync:
  - SYNC_INTERVAL: scheduler period (default 6h)
  - SYNC_LOOKBACK_DAYS: requested metric range (default 28)
  - SYNC_ON_STARTUP: run once at boot (default true)

Forecast and insights:
  - FORECAST_MIN_HISTORY_DAYS, FORECAST_MODEL_TYPE
  - INSIGHTS_SENSITIVITY, INSIGHTS_HIT_FLOOR, INSIGHTS_CLUSTERS

Database, server and logging:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - HTTP_HOST, HTTP_PORT, CORS_ORIGINS, RATE_LIMIT_REQUESTS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Invalid configuration")
	}
*/
package config
