// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"sort"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/tubelytics/internal/forecast"
	"github.com/tomtom215/tubelytics/internal/insights"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/nowcast"
)

var fixedNow = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

// mockProvider is an in-memory DataProvider.
type mockProvider struct {
	mu    gosync.Mutex
	calls []string

	channel        *models.Channel
	videos         []models.Video
	channelMetrics []models.MetricValue
	videoMetrics   map[string][]models.MetricValue
	publicChannels map[string]*models.Channel
	publicVideos   map[string][]models.Video

	// errs fails the named method.
	errs map[string]error

	// When block is set GetChannel signals entered and waits on block.
	block   chan struct{}
	entered chan struct{}

	videoDelay  time.Duration
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (m *mockProvider) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
	return m.errs[method]
}

func (m *mockProvider) callCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *mockProvider) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	if m.block != nil {
		m.entered <- struct{}{}
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.record("GetChannel"); err != nil {
		return nil, err
	}
	if m.channel == nil {
		return &models.Channel{ID: channelID, Title: "Owned"}, nil
	}
	ch := *m.channel
	return &ch, nil
}

func (m *mockProvider) ListVideos(context.Context, string, int) ([]models.Video, error) {
	if err := m.record("ListVideos"); err != nil {
		return nil, err
	}
	out := make([]models.Video, len(m.videos))
	copy(out, m.videos)
	return out, nil
}

func (m *mockProvider) GetChannelDailyMetrics(context.Context, string, models.DateRange) ([]models.MetricValue, error) {
	if err := m.record("GetChannelDailyMetrics"); err != nil {
		return nil, err
	}
	return m.channelMetrics, nil
}

func (m *mockProvider) GetVideoDailyMetrics(_ context.Context, ids []string, _ models.DateRange) ([]models.MetricValue, error) {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		cur := m.maxInflight.Load()
		if n <= cur || m.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.videoDelay > 0 {
		time.Sleep(m.videoDelay)
	}
	if err := m.record("GetVideoDailyMetrics"); err != nil {
		return nil, err
	}
	var out []models.MetricValue
	for _, id := range ids {
		out = append(out, m.videoMetrics[id]...)
	}
	return out, nil
}

func (m *mockProvider) GetPublicChannel(_ context.Context, channelID string) (*models.Channel, error) {
	if err := m.record("GetPublicChannel"); err != nil {
		return nil, err
	}
	if ch, ok := m.publicChannels[channelID]; ok {
		c := *ch
		return &c, nil
	}
	return &models.Channel{ID: channelID, Title: "Rival " + channelID}, nil
}

func (m *mockProvider) GetPublicVideos(_ context.Context, channelID string, _ int) ([]models.Video, error) {
	if err := m.record("GetPublicVideos"); err != nil {
		return nil, err
	}
	out := make([]models.Video, len(m.publicVideos[channelID]))
	copy(out, m.publicVideos[channelID])
	return out, nil
}

// mockStore is an in-memory Store.
type mockStore struct {
	mu gosync.Mutex

	channels       map[string]models.Channel
	videos         map[string]models.Video
	channelMetrics map[string]models.ChannelDayMetric
	videoMetrics   map[string]models.VideoDayMetric
	quality        []models.QualityScore
	snapshots      map[string][]models.CompetitorSnapshot
	momentum       []models.MomentumRecord

	created     []models.SyncRun
	checkpoints []string
	finished    []models.SyncRun

	// errs fails the named method.
	errs map[string]error
}

func newMockStore() *mockStore {
	return &mockStore{
		channels:       make(map[string]models.Channel),
		videos:         make(map[string]models.Video),
		channelMetrics: make(map[string]models.ChannelDayMetric),
		videoMetrics:   make(map[string]models.VideoDayMetric),
		snapshots:      make(map[string][]models.CompetitorSnapshot),
		errs:           make(map[string]error),
	}
}

func dayKeyString(entity string, day time.Time) string {
	return entity + "|" + models.Day(day).Format(models.DayLayout)
}

func (s *mockStore) UpsertChannel(_ context.Context, ch models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["UpsertChannel"]; err != nil {
		return err
	}
	s.channels[ch.ID] = ch
	return nil
}

func (s *mockStore) UpsertVideos(_ context.Context, videos []models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	return nil
}

func (s *mockStore) ListVideos(_ context.Context, channelID string) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, v := range s.videos {
		if v.ChannelID == channelID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *mockStore) UpsertChannelMetrics(_ context.Context, rows []models.ChannelDayMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.channelMetrics[dayKeyString(r.ChannelID, r.Day)] = r
	}
	return nil
}

func (s *mockStore) GetChannelMetrics(_ context.Context, channelID string, r models.DateRange) ([]models.ChannelDayMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChannelDayMetric
	for _, row := range s.channelMetrics {
		if row.ChannelID == channelID && r.Contains(row.Day) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *mockStore) UpsertVideoMetrics(_ context.Context, rows []models.VideoDayMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.videoMetrics[dayKeyString(r.VideoID, r.Day)] = r
	}
	return nil
}

func (s *mockStore) videoRows(videoID string) []models.VideoDayMetric {
	var out []models.VideoDayMetric
	for _, row := range s.videoMetrics {
		if row.VideoID == videoID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func (s *mockStore) GetVideoMetrics(_ context.Context, videoID string, r models.DateRange) ([]models.VideoDayMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VideoDayMetric
	for _, row := range s.videoRows(videoID) {
		if r.Contains(row.Day) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *mockStore) GetVideoViewHistory(_ context.Context, videoID string) (models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out models.Series
	for _, row := range s.videoRows(videoID) {
		out = append(out, models.Point{Date: row.Day, Value: float64(row.Views)})
	}
	return out, nil
}

func (s *mockStore) UpsertQualityScores(_ context.Context, scores []models.QualityScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quality = append(s.quality, scores...)
	return nil
}

func (s *mockStore) UpsertCompetitorSnapshots(_ context.Context, snaps []models.CompetitorSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range snaps {
		list := s.snapshots[snap.VideoID]
		replaced := false
		for i := range list {
			if list[i].Day.Equal(snap.Day) {
				list[i] = snap
				replaced = true
			}
		}
		if !replaced {
			list = append(list, snap)
		}
		s.snapshots[snap.VideoID] = list
	}
	return nil
}

func (s *mockStore) GetCompetitorSnapshots(_ context.Context, videoID string) ([]models.CompetitorSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CompetitorSnapshot, len(s.snapshots[videoID]))
	copy(out, s.snapshots[videoID])
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *mockStore) UpsertMomentum(_ context.Context, records []models.MomentumRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.momentum = append(s.momentum, records...)
	return nil
}

func (s *mockStore) CreateSyncRun(_ context.Context, run *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs["CreateSyncRun"]; err != nil {
		return err
	}
	s.created = append(s.created, *run)
	return nil
}

func (s *mockStore) UpdateSyncCheckpoint(_ context.Context, _, checkpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints = append(s.checkpoints, checkpoint)
	return nil
}

func (s *mockStore) FinishSyncRun(_ context.Context, run *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, *run)
	return nil
}

// mockCurves records refit buckets.
type mockCurves struct {
	mu      gosync.Mutex
	buckets []string
	sizes   map[string]int
}

func (c *mockCurves) Refit(_ context.Context, cluster, bucket string, population []nowcast.VideoViews) ([]models.GrowthCurvePoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = append(c.buckets, bucket)
	if c.sizes == nil {
		c.sizes = make(map[string]int)
	}
	c.sizes[bucket] = len(population)
	return []models.GrowthCurvePoint{{Cluster: cluster, DurationBucket: bucket, Day: 1}}, nil
}

// mockTrainer records training calls.
type mockTrainer struct {
	modelType string
	history   models.Series
	calls     int
}

func (t *mockTrainer) Train(_ context.Context, modelType string, history models.Series) (*forecast.TrainingOutcome, error) {
	t.calls++
	t.modelType = modelType
	t.history = history
	return &forecast.TrainingOutcome{ModelType: modelType, Active: forecast.ModelSeasonalNaive}, nil
}

// mockInsights records sweep contexts.
type mockInsights struct {
	contexts []*insights.Context
	err      error
}

func (r *mockInsights) Run(_ context.Context, pc *insights.Context) (*insights.RunSummary, error) {
	r.contexts = append(r.contexts, pc)
	if r.err != nil {
		return nil, r.err
	}
	return &insights.RunSummary{Plugins: 1, Succeeded: 1}, nil
}

// dailyValues builds metric triples for days ending at end.
func dailyValues(entity string, end time.Time, days int, metric string, value func(i int) float64) []models.MetricValue {
	start := models.Day(end).AddDate(0, 0, -(days - 1))
	out := make([]models.MetricValue, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, models.MetricValue{EntityID: entity, Date: start.AddDate(0, 0, i), Metric: metric, Value: value(i)})
	}
	return out
}

// emptyData is an insights.DataAccess with no rows.
type emptyData struct{}

func (emptyData) GetChannelMetrics(context.Context, string, models.DateRange) ([]models.ChannelDayMetric, error) {
	return nil, nil
}

func (emptyData) GetChannelVideoMetrics(context.Context, string, models.DateRange) ([]models.VideoDayMetric, error) {
	return nil, nil
}

func (emptyData) ListVideos(context.Context, string) ([]models.Video, error) { return nil, nil }

func (emptyData) ListCompetitorVideos(context.Context) ([]models.Video, error) { return nil, nil }

func (emptyData) ListQualityScores(context.Context, string) ([]models.QualityScore, error) {
	return nil, nil
}

func (emptyData) ListMomentumHits(context.Context, time.Time) ([]models.MomentumRecord, error) {
	return nil, nil
}
