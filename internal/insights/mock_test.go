// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/tubelytics/internal/models"
)

// mockData is an in-memory DataAccess.
type mockData struct {
	channel []models.ChannelDayMetric
	video   []models.VideoDayMetric
	videos  []models.Video
	rivals  []models.Video
	scores  []models.QualityScore
	hits    []models.MomentumRecord
	err     error
}

func (m *mockData) GetChannelMetrics(_ context.Context, channelID string, r models.DateRange) ([]models.ChannelDayMetric, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.ChannelDayMetric
	for _, row := range m.channel {
		if row.ChannelID == channelID && r.Contains(row.Day) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockData) GetChannelVideoMetrics(_ context.Context, _ string, r models.DateRange) ([]models.VideoDayMetric, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.VideoDayMetric
	for _, row := range m.video {
		if r.Contains(row.Day) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockData) ListVideos(context.Context, string) ([]models.Video, error) {
	return m.videos, m.err
}

func (m *mockData) ListCompetitorVideos(context.Context) ([]models.Video, error) {
	return m.rivals, m.err
}

func (m *mockData) ListQualityScores(context.Context, string) ([]models.QualityScore, error) {
	return m.scores, m.err
}

func (m *mockData) ListMomentumHits(_ context.Context, since time.Time) ([]models.MomentumRecord, error) {
	var out []models.MomentumRecord
	for _, h := range m.hits {
		if h.IsHit && !h.Day.Before(models.Day(since)) {
			out = append(out, h)
		}
	}
	return out, m.err
}

// mockStore records saved insights.
type mockStore struct {
	mu    sync.Mutex
	saved []models.Insight
	err   error
}

func (m *mockStore) SaveInsights(_ context.Context, in []models.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, in...)
	return nil
}

// stubPlugin returns fixed insights, an error or panics.
type stubPlugin struct {
	name     string
	insights []models.Insight
	err      error
	panics   bool
}

func (s stubPlugin) Name() string { return s.name }

func (s stubPlugin) Analyze(context.Context, *Context) ([]models.Insight, error) {
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Insight, len(s.insights))
	copy(out, s.insights)
	return out, nil
}

var errPlugin = errors.New("plugin failed")

var testEnd = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

// dayBefore returns testEnd minus n days.
func dayBefore(n int) time.Time {
	return testEnd.AddDate(0, 0, -n)
}

func testContext(data DataAccess, days int) *Context {
	return &Context{
		RunID:     "run-1",
		ChannelID: "UC1",
		Range:     models.NewDateRange(testEnd, days),
		Data:      data,
	}
}
