// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package config

import (
	"fmt"

	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/validation"
)

// Validate applies the struct tag rules and the cross-field checks.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateForecast(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" && c.YouTube.OAuthToken == "" {
		return fmt.Errorf("one of YOUTUBE_API_KEY or YOUTUBE_OAUTH_TOKEN is required")
	}
	seen := make(map[string]struct{}, len(c.YouTube.CompetitorIDs))
	for _, id := range c.YouTube.CompetitorIDs {
		if id == c.YouTube.ChannelID {
			return fmt.Errorf("YOUTUBE_COMPETITOR_IDS must not include the owned channel %s", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("YOUTUBE_COMPETITOR_IDS lists %s more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *Config) validateForecast() error {
	f := c.Forecast
	if f.MinHistoryDays < f.BacktestWindow+f.BacktestHorizon {
		return fmt.Errorf("FORECAST_MIN_HISTORY_DAYS (%d) must cover one backtest window plus horizon (%d)",
			f.MinHistoryDays, f.BacktestWindow+f.BacktestHorizon)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// LogConfig converts the logging section for logging.Init.
func (c *Config) LogConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}
