// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset or
// points at a missing file.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tubelytics/config.yaml",
	"/etc/tubelytics/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"youtube.competitor_ids",
	"server.cors_origins",
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := []string{}
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"youtube_api_key":          "youtube.api_key",
	"youtube_oauth_token":      "youtube.oauth_token",
	"youtube_channel_id":       "youtube.channel_id",
	"youtube_competitor_ids":   "youtube.competitor_ids",
	"youtube_rate_capacity":    "youtube.rate_capacity",
	"youtube_rate_refill":      "youtube.rate_refill",
	"youtube_max_retries":      "youtube.max_retries",
	"youtube_retry_base_delay": "youtube.retry_base_delay",
	"youtube_timeout":          "youtube.timeout",
	"youtube_breaker_failures": "youtube.breaker_failures",
	"youtube_breaker_timeout":  "youtube.breaker_timeout",

	"sync_interval":      "sync.interval",
	"sync_lookback_days": "sync.lookback_days",
	"sync_max_videos":    "sync.max_videos",
	"sync_workers":       "sync.workers",
	"sync_on_startup":    "sync.run_on_startup",

	"forecast_min_history_days": "forecast.min_history_days",
	"forecast_backtest_window":  "forecast.backtest_window",
	"forecast_backtest_horizon": "forecast.backtest_horizon",
	"forecast_backtest_step":    "forecast.backtest_step",
	"forecast_model_type":       "forecast.model_type",
	"forecast_curve_cache_ttl":  "forecast.curve_cache_ttl",

	"insights_sensitivity": "insights.sensitivity",
	"insights_hit_floor":   "insights.hit_floor",
	"insights_clusters":    "insights.clusters",
	"insights_seed":        "insights.seed",
	"insights_publish":     "insights.publish",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to its koanf path. Unmapped
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
