// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/tubelytics/internal/scoring"
)

// Config is the root configuration.
type Config struct {
	YouTube  YouTubeConfig  `koanf:"youtube"`
	Sync     SyncConfig     `koanf:"sync"`
	Forecast ForecastConfig `koanf:"forecast"`
	Insights InsightsConfig `koanf:"insights"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// YouTubeConfig configures the remote data provider.
type YouTubeConfig struct {
	APIKey        string   `koanf:"api_key"`
	OAuthToken    string   `koanf:"oauth_token"`
	ChannelID     string   `koanf:"channel_id" validate:"required"`
	CompetitorIDs []string `koanf:"competitor_ids" validate:"dive,required"`

	// Token bucket: at most RateCapacity calls in a burst, refilled at
	// RateRefill tokens per second.
	RateCapacity int     `koanf:"rate_capacity" validate:"min=1"`
	RateRefill   float64 `koanf:"rate_refill" validate:"gt=0"`

	MaxRetries     int           `koanf:"max_retries" validate:"min=0,max=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gte=0"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`

	// Circuit breaker around every provider call.
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// SyncConfig configures the orchestrator and scheduler.
type SyncConfig struct {
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	LookbackDays int           `koanf:"lookback_days" validate:"min=1,max=365"`
	MaxVideos    int           `koanf:"max_videos" validate:"min=1,max=50"`
	Workers      int           `koanf:"workers" validate:"min=1,max=16"`
	RunOnStartup bool          `koanf:"run_on_startup"`
}

// ForecastConfig configures the model registry.
type ForecastConfig struct {
	MinHistoryDays  int           `koanf:"min_history_days" validate:"min=1"`
	BacktestWindow  int           `koanf:"backtest_window" validate:"min=1"`
	BacktestHorizon int           `koanf:"backtest_horizon" validate:"min=1"`
	BacktestStep    int           `koanf:"backtest_step" validate:"min=1"`
	ModelType       string        `koanf:"model_type" validate:"required"`
	CurveCacheTTL   time.Duration `koanf:"curve_cache_ttl" validate:"gte=0"`
}

// InsightsConfig configures the plugin sweep.
type InsightsConfig struct {
	Sensitivity float64            `koanf:"sensitivity" validate:"gt=0"`
	HitFloor    float64            `koanf:"hit_floor" validate:"gte=0"`
	Clusters    int                `koanf:"clusters" validate:"min=1,max=50"`
	Seed        uint64             `koanf:"seed"`
	Publish     bool               `koanf:"publish"`
	Benchmarks  scoring.Benchmarks `koanf:"benchmarks"`
}

// DatabaseConfig configures DuckDB.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0"` // 0 = NumCPU
}

// ServerConfig configures the operational HTTP surface.
type ServerConfig struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
	CORSOrigins   []string      `koanf:"cors_origins"`
	RateLimitReqs int           `koanf:"rate_limit_reqs" validate:"min=0"` // 0 disables
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			CompetitorIDs:   []string{},
			RateCapacity:    10,
			RateRefill:      1,
			MaxRetries:      3,
			RetryBaseDelay:  time.Second,
			Timeout:         30 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  time.Minute,
		},
		Sync: SyncConfig{
			Interval:     6 * time.Hour,
			LookbackDays: 28,
			MaxVideos:    50,
			Workers:      3,
			RunOnStartup: true,
		},
		Forecast: ForecastConfig{
			MinHistoryDays:  60,
			BacktestWindow:  28,
			BacktestHorizon: 7,
			BacktestStep:    7,
			ModelType:       "channel_views",
			CurveCacheTTL:   time.Hour,
		},
		Insights: InsightsConfig{
			Sensitivity: 2.5,
			HitFloor:    scoring.DefaultHitFloor,
			Clusters:    8,
			Seed:        42,
			Publish:     true,
			Benchmarks:  scoring.DefaultBenchmarks(),
		},
		Database: DatabaseConfig{
			Path:      "/data/tubelytics.duckdb",
			MaxMemory: "1GB",
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8480,
			Timeout:       30 * time.Second,
			CORSOrigins:   []string{"*"},
			RateLimitReqs: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
