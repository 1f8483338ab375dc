// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import (
	"encoding/json"
	"time"
)

// MomentumRecord is the derived velocity of a competitor video on a day.
// Later computations for the same (video, day) supersede earlier ones.
type MomentumRecord struct {
	VideoID       string    `json:"video_id"`
	Day           time.Time `json:"day"`
	Velocity24h   float64   `json:"velocity_24h"`
	Velocity7d    float64   `json:"velocity_7d"`
	MomentumScore float64   `json:"momentum_score"`
	IsHit         bool      `json:"is_hit"`
	ComputedAt    time.Time `json:"computed_at"`
}

// QualityScore is the current 0-100 composite score for a video.
type QualityScore struct {
	VideoID         string          `json:"video_id"`
	Score           float64         `json:"score"`
	VelocityScore   float64         `json:"velocity_score"`
	EfficiencyScore float64         `json:"efficiency_score"`
	ConversionScore float64         `json:"conversion_score"`
	Explanation     json.RawMessage `json:"explanation"`
	ComputedAt      time.Time       `json:"computed_at"`
}

// Duration buckets used to key growth curves.
const (
	BucketShort  = "short"
	BucketMedium = "medium"
	BucketLong   = "long"
)

// GrowthCurvePoint is one day of an empirical growth curve: the fraction of
// the day-28 total reached by Day across the fitted population.
type GrowthCurvePoint struct {
	Cluster        string    `json:"cluster"`
	DurationBucket string    `json:"duration_bucket"`
	Day            int       `json:"day"`
	MedianPct      float64   `json:"median_pct"`
	P25Pct         float64   `json:"p25_pct"`
	P75Pct         float64   `json:"p75_pct"`
	SampleSize     int       `json:"sample_size"`
	FittedAt       time.Time `json:"fitted_at"`
}

// ForecastModelRecord is one trained model variant in the registry.
// At most one record per Type is active.
type ForecastModelRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ModelName string    `json:"model_name"`
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	SMAPE     float64   `json:"smape"`
	MAE       float64   `json:"mae"`
	Windows   int       `json:"windows"`
	IsActive  bool      `json:"is_active"`
}

// ForecastPoint is one forecast day with its confidence band.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// ChannelForecast is an on-demand channel views forecast from the active
// model of ModelType.
type ChannelForecast struct {
	ChannelID   string          `json:"channel_id"`
	ModelType   string          `json:"model_type"`
	ModelName   string          `json:"model_name"`
	HistoryDays int             `json:"history_days"`
	Points      []ForecastPoint `json:"points"`
}

// VideoNowcast projects a young video's cumulative views to day 7 from the
// growth curve of its channel and duration bucket. Day is the number of
// synced days since publish; Current is the cumulative views through Day.
type VideoNowcast struct {
	VideoID        string  `json:"video_id"`
	ChannelID      string  `json:"channel_id"`
	DurationBucket string  `json:"duration_bucket"`
	Day            int     `json:"day"`
	Current        float64 `json:"current"`
	Predicted      float64 `json:"predicted"`
	Low            float64 `json:"low"`
	High           float64 `json:"high"`
	Extrapolated   bool    `json:"extrapolated"`
}
