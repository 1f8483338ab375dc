// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package models

import "time"

// Channel represents an owned or competitor channel profile
type Channel struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	SubscriberCount int64     `json:"subscriber_count"`
	VideoCount      int64     `json:"video_count"`
	ViewCount       int64     `json:"view_count"`
	IsCompetitor    bool      `json:"is_competitor"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Video represents a published video. Title is the only field that changes after publish.
type Video struct {
	ID              string    `json:"id"`
	ChannelID       string    `json:"channel_id"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"published_at"`
	DurationSeconds int       `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
	IsCompetitor    bool      `json:"is_competitor"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AgeDays returns whole days since publish as of asOf.
func (v *Video) AgeDays(asOf time.Time) int {
	return int(Day(asOf).Sub(Day(v.PublishedAt)).Hours() / 24)
}

// CompetitorSnapshot is the cumulative view count of a competitor video on a day.
// Counts are assumed non-decreasing per video.
type CompetitorSnapshot struct {
	VideoID   string    `json:"video_id"`
	Day       time.Time `json:"day"`
	ViewCount int64     `json:"view_count"`
}
