// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import "time"

// Metric names reported by the data provider.
const (
	MetricViews             = "views"
	MetricWatchMinutes      = "estimatedMinutesWatched"
	MetricImpressions       = "impressions"
	MetricCTR               = "impressionsClickThroughRate"
	MetricLikes             = "likes"
	MetricComments          = "comments"
	MetricShares            = "shares"
	MetricSubscribersGained = "subscribersGained"
)

// MetricValue is a single {date, metric, value} triple as returned by the provider.
type MetricValue struct {
	EntityID string    `json:"entity_id"`
	Date     time.Time `json:"date"`
	Metric   string    `json:"metric"`
	Value    float64   `json:"value"`
}

// DayMetrics holds the per-day counters shared by channel and video facts.
type DayMetrics struct {
	Views             int64   `json:"views"`
	WatchMinutes      float64 `json:"watch_minutes"`
	Impressions       int64   `json:"impressions"`
	CTR               float64 `json:"ctr"`
	Likes             int64   `json:"likes"`
	Comments          int64   `json:"comments"`
	Shares            int64   `json:"shares"`
	SubscribersGained int64   `json:"subscribers_gained"`
}

// Engagements returns likes + comments + shares.
func (m *DayMetrics) Engagements() int64 {
	return m.Likes + m.Comments + m.Shares
}

// Set assigns a provider metric by name. Unknown names are ignored and
// reported as false.
func (m *DayMetrics) Set(metric string, value float64) bool {
	switch metric {
	case MetricViews:
		m.Views = int64(value)
	case MetricWatchMinutes:
		m.WatchMinutes = value
	case MetricImpressions:
		m.Impressions = int64(value)
	case MetricCTR:
		m.CTR = value
	case MetricLikes:
		m.Likes = int64(value)
	case MetricComments:
		m.Comments = int64(value)
	case MetricShares:
		m.Shares = int64(value)
	case MetricSubscribersGained:
		m.SubscribersGained = int64(value)
	default:
		return false
	}
	return true
}

// ChannelDayMetric is one row per (channel, day)
type ChannelDayMetric struct {
	ChannelID string    `json:"channel_id"`
	Day       time.Time `json:"day"`
	DayMetrics
}

// VideoDayMetric is one row per (video, day)
type VideoDayMetric struct {
	VideoID string    `json:"video_id"`
	Day     time.Time `json:"day"`
	DayMetrics
}
