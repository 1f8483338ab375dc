// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/insights"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/nowcast"
	"github.com/tomtom215/tubelytics/internal/scoring"
)

func (o *Orchestrator) syncChannel(ctx context.Context, st *runState) error {
	ch, err := o.provider.GetChannel(ctx, st.req.ChannelID)
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	if ch == nil {
		return apperror.Newf(apperror.KindValidation, "get channel", "channel %s not found", st.req.ChannelID)
	}
	profile := *ch
	profile.ID = st.req.ChannelID
	profile.IsCompetitor = false
	if err := o.store.UpsertChannel(ctx, profile); err != nil {
		return fmt.Errorf("upsert channel: %w", err)
	}
	metrics.RecordSyncRecords("channels", 1)
	return nil
}

func (o *Orchestrator) syncVideos(ctx context.Context, st *runState) error {
	videos, err := o.provider.ListVideos(ctx, st.req.ChannelID, o.opts.MaxVideos)
	if err != nil {
		return fmt.Errorf("list videos: %w", err)
	}
	if len(videos) > o.opts.MaxVideos {
		videos = videos[:o.opts.MaxVideos]
	}
	for i := range videos {
		if videos[i].ChannelID == "" {
			videos[i].ChannelID = st.req.ChannelID
		}
		videos[i].IsCompetitor = false
	}
	if err := o.store.UpsertVideos(ctx, videos); err != nil {
		return fmt.Errorf("upsert videos: %w", err)
	}
	st.videos = videos
	st.result.Videos = len(videos)
	metrics.RecordSyncRecords("videos", len(videos))
	return nil
}

// metricsRange is the requested range widened to cover the last 21 days.
func (st *runState) metricsRange() models.DateRange {
	return st.req.Range.Widen(minMetricsLookbackDays)
}

func (o *Orchestrator) syncChannelMetrics(ctx context.Context, st *runState) error {
	values, err := o.provider.GetChannelDailyMetrics(ctx, st.req.ChannelID, st.metricsRange())
	if err != nil {
		return fmt.Errorf("channel daily metrics: %w", err)
	}
	rows := PivotChannelMetrics(st.req.ChannelID, values)
	if err := o.store.UpsertChannelMetrics(ctx, rows); err != nil {
		return fmt.Errorf("upsert channel metrics: %w", err)
	}
	st.result.ChannelDays = len(rows)
	metrics.RecordSyncRecords("channel_days", len(rows))
	return nil
}

// syncVideoMetrics fetches every video's daily metrics with a fixed pool of
// workers draining a shared queue, then stores all rows in one batch.
func (o *Orchestrator) syncVideoMetrics(ctx context.Context, st *runState) error {
	if len(st.videos) == 0 {
		return nil
	}
	r := st.metricsRange()

	queue := make(chan string, len(st.videos))
	for _, v := range st.videos {
		queue <- v.ID
	}
	close(queue)

	var (
		mu   gosync.Mutex
		rows []models.VideoDayMetric
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < o.opts.Workers; w++ {
		g.Go(func() error {
			for id := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				values, err := o.provider.GetVideoDailyMetrics(gctx, []string{id}, r)
				if err != nil {
					return fmt.Errorf("video %s daily metrics: %w", id, err)
				}
				pivoted := PivotVideoMetrics(values)
				mu.Lock()
				rows = append(rows, pivoted...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].VideoID != rows[j].VideoID {
			return rows[i].VideoID < rows[j].VideoID
		}
		return rows[i].Day.Before(rows[j].Day)
	})
	if err := o.store.UpsertVideoMetrics(ctx, rows); err != nil {
		return fmt.Errorf("upsert video metrics: %w", err)
	}
	st.result.VideoDays = len(rows)
	metrics.RecordSyncRecords("video_days", len(rows))
	return nil
}

// computeDerived refits growth curves, rescores every known video and
// retrains the forecast models.
func (o *Orchestrator) computeDerived(ctx context.Context, st *runState) error {
	known, err := o.store.ListVideos(ctx, st.req.ChannelID)
	if err != nil {
		return fmt.Errorf("list known videos: %w", err)
	}
	if err := o.refitCurves(ctx, st, known); err != nil {
		return err
	}
	if err := o.rescore(ctx, st, known); err != nil {
		return err
	}
	return o.trainModels(ctx, st)
}

// refitCurves fits one curve per duration bucket, clustered by channel.
func (o *Orchestrator) refitCurves(ctx context.Context, st *runState, known []models.Video) error {
	if o.deps.Curves == nil {
		return nil
	}
	populations := make(map[string][]nowcast.VideoViews)
	for _, v := range known {
		history, err := o.store.GetVideoViewHistory(ctx, v.ID)
		if err != nil {
			return fmt.Errorf("view history of %s: %w", v.ID, err)
		}
		daily := dailyViewsSincePublish(v, history)
		if daily == nil {
			continue
		}
		bucket := nowcast.DurationBucket(v.DurationSeconds)
		populations[bucket] = append(populations[bucket], nowcast.VideoViews{
			VideoID:    v.ID,
			DailyViews: daily,
		})
	}

	for _, bucket := range []string{models.BucketShort, models.BucketMedium, models.BucketLong} {
		population := populations[bucket]
		if len(population) == 0 {
			continue
		}
		points, err := o.deps.Curves.Refit(ctx, st.req.ChannelID, bucket, population)
		if err != nil {
			return fmt.Errorf("refit %s curve: %w", bucket, err)
		}
		if len(points) > 0 {
			st.result.CurvesFitted++
		}
	}
	return nil
}

// dailyViewsSincePublish lays a view history out day by day from the
// publish day. It returns nil unless every one of the first
// nowcast.CurveDays days has a stored row: a video whose early life was
// never synced cannot describe a growth curve. Gaps after that window count
// as zero views.
func dailyViewsSincePublish(v models.Video, history models.Series) []float64 {
	if len(history) == 0 {
		return nil
	}
	published := models.Day(v.PublishedAt)
	last := models.Day(history.Last().Date)
	if last.Before(published) {
		return nil
	}
	days := int(last.Sub(published).Hours()/24) + 1
	if days < nowcast.CurveDays {
		return nil
	}
	out := make([]float64, days)
	seen := make([]bool, nowcast.CurveDays)
	for _, p := range history {
		idx := int(models.Day(p.Date).Sub(published).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		out[idx] = p.Value
		if idx < nowcast.CurveDays {
			seen[idx] = true
		}
	}
	for _, ok := range seen {
		if !ok {
			return nil
		}
	}
	return out
}

func (o *Orchestrator) rescore(ctx context.Context, st *runState, known []models.Video) error {
	asOf := st.req.Range.End
	window := models.NewDateRange(asOf, scoring.QualityWindowDays)
	scores := make([]models.QualityScore, 0, len(known))
	for _, v := range known {
		rows, err := o.store.GetVideoMetrics(ctx, v.ID, window)
		if err != nil {
			return fmt.Errorf("metrics of %s: %w", v.ID, err)
		}
		score, err := scoring.ComputeQuality(v, rows, asOf, o.opts.Benchmarks)
		if err != nil {
			return fmt.Errorf("score %s: %w", v.ID, err)
		}
		scores = append(scores, score)
	}
	if err := o.store.UpsertQualityScores(ctx, scores); err != nil {
		return fmt.Errorf("upsert quality scores: %w", err)
	}
	st.result.QualityScores = len(scores)
	metrics.RecordSyncRecords("quality_scores", len(scores))
	return nil
}

// trainModels retrains on channel views when enough history exists.
func (o *Orchestrator) trainModels(ctx context.Context, st *runState) error {
	if o.deps.Models == nil {
		return nil
	}
	rows, err := o.store.GetChannelMetrics(ctx, st.req.ChannelID, models.NewDateRange(st.req.Range.End, o.opts.TrainingDays))
	if err != nil {
		return fmt.Errorf("channel history: %w", err)
	}
	history := channelViewSeries(rows)
	if len(history) < o.opts.MinHistory {
		logging.Ctx(ctx).Debug().
			Int("history_days", len(history)).
			Int("min_history_days", o.opts.MinHistory).
			Msg("Not enough channel history to train forecast models")
		return nil
	}

	outcome, err := o.deps.Models.Train(ctx, o.opts.ModelType, history)
	if err != nil {
		return fmt.Errorf("train %s models: %w", o.opts.ModelType, err)
	}
	st.result.Training = outcome
	return nil
}

// channelViewSeries builds a contiguous daily views series from the first
// to the last row. Missing days are zero.
func channelViewSeries(rows []models.ChannelDayMetric) models.Series {
	if len(rows) == 0 {
		return nil
	}
	byDay := make(map[int64]float64, len(rows))
	first, last := models.Day(rows[0].Day), models.Day(rows[0].Day)
	for _, r := range rows {
		d := models.Day(r.Day)
		byDay[d.Unix()] = float64(r.Views)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	var out models.Series
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, models.Point{Date: d, Value: byDay[d.Unix()]})
	}
	return out
}

func (o *Orchestrator) syncCompetitors(ctx context.Context, st *runState) error {
	today := models.Day(o.now())
	for _, id := range st.req.CompetitorIDs {
		if err := o.syncCompetitor(ctx, st, id, today); err != nil {
			return fmt.Errorf("competitor %s: %w", id, err)
		}
	}
	return nil
}

// syncCompetitor refreshes one competitor: profile, recent uploads, today's
// view snapshots and momentum for each of its videos.
func (o *Orchestrator) syncCompetitor(ctx context.Context, st *runState, channelID string, today time.Time) error {
	ch, err := o.provider.GetPublicChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get public channel: %w", err)
	}
	if ch == nil {
		return apperror.Newf(apperror.KindValidation, "get public channel", "channel %s not found", channelID)
	}
	profile := *ch
	profile.ID = channelID
	profile.IsCompetitor = true
	if err := o.store.UpsertChannel(ctx, profile); err != nil {
		return fmt.Errorf("upsert channel: %w", err)
	}

	videos, err := o.provider.GetPublicVideos(ctx, channelID, o.opts.MaxVideos)
	if err != nil {
		return fmt.Errorf("list public videos: %w", err)
	}
	if len(videos) > o.opts.MaxVideos {
		videos = videos[:o.opts.MaxVideos]
	}
	snaps := make([]models.CompetitorSnapshot, 0, len(videos))
	for i := range videos {
		videos[i].ChannelID = channelID
		videos[i].IsCompetitor = true
		snaps = append(snaps, models.CompetitorSnapshot{VideoID: videos[i].ID, Day: today, ViewCount: videos[i].ViewCount})
	}
	if err := o.store.UpsertVideos(ctx, videos); err != nil {
		return fmt.Errorf("upsert videos: %w", err)
	}
	if err := o.store.UpsertCompetitorSnapshots(ctx, snaps); err != nil {
		return fmt.Errorf("upsert snapshots: %w", err)
	}

	var records []models.MomentumRecord
	for _, v := range videos {
		history, err := o.store.GetCompetitorSnapshots(ctx, v.ID)
		if err != nil {
			return fmt.Errorf("snapshots of %s: %w", v.ID, err)
		}
		records = append(records, scoring.ComputeMomentum(v.ID, history, scoring.MomentumOptions{
			HitFloor: o.opts.HitFloor,
			Now:      o.now,
		})...)
	}
	if err := o.store.UpsertMomentum(ctx, records); err != nil {
		return fmt.Errorf("upsert momentum: %w", err)
	}

	st.result.CompetitorVideos += len(videos)
	st.result.MomentumRecords += len(records)
	metrics.RecordSyncRecords("competitor_videos", len(videos))
	metrics.RecordSyncRecords("momentum_records", len(records))
	return nil
}

func (o *Orchestrator) generateInsights(ctx context.Context, st *runState) error {
	if o.deps.Insights == nil || o.deps.Data == nil {
		return nil
	}
	summary, err := o.deps.Insights.Run(ctx, &insights.Context{
		RunID:     st.run.ID,
		ChannelID: st.req.ChannelID,
		Range:     st.req.Range,
		Data:      o.deps.Data,
	})
	if err != nil {
		return fmt.Errorf("insight sweep: %w", err)
	}
	st.result.Insights = summary
	if summary.Failed > 0 {
		logging.Ctx(ctx).Warn().
			Int("failed_plugins", summary.Failed).
			Interface("errors", summary.Errors).
			Msg("Some insight plugins failed")
	}
	return nil
}
