// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/forecast"
	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/models"
	"github.com/tomtom215/tubelytics/internal/nowcast"
)

// ErrVideoNotFound is returned by VideoNowcast for a video the channel does
// not own.
var ErrVideoNotFound = errors.New("video not found")

// ProjectionStore is the read side used by on-demand projections.
type ProjectionStore interface {
	GetChannelMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.ChannelDayMetric, error)
	ListVideos(ctx context.Context, channelID string) ([]models.Video, error)
	GetVideoViewHistory(ctx context.Context, videoID string) (models.Series, error)
}

// BandedForecaster forecasts with the active model; satisfied by
// *forecast.Registry.
type BandedForecaster interface {
	ForecastWithBand(ctx context.Context, modelType string, history models.Series, horizon int) (*forecast.Result, error)
}

// Nowcaster projects early views from stored growth curves; satisfied by
// *nowcast.Engine.
type Nowcaster interface {
	Nowcast(ctx context.Context, cluster, bucket string, current float64, day int) (nowcast.Projection, error)
}

// Projector answers forecast and nowcast requests between sync runs from
// the data and models the last run left behind.
type Projector struct {
	store        ProjectionStore
	models       BandedForecaster
	curves       Nowcaster
	trainingDays int
	now          func() time.Time
}

// NewProjector creates a projector. History windows follow opts the same way
// the orchestrator's training stage does.
func NewProjector(store ProjectionStore, fc BandedForecaster, nc Nowcaster, opts Options) *Projector {
	opts.applyDefaults()
	return &Projector{
		store:        store,
		models:       fc,
		curves:       nc,
		trainingDays: opts.TrainingDays,
		now:          time.Now,
	}
}

// ChannelForecast forecasts the next horizon days of channel views.
func (p *Projector) ChannelForecast(ctx context.Context, channelID, modelType string, horizon int) (*models.ChannelForecast, error) {
	rows, err := p.store.GetChannelMetrics(ctx, channelID, models.NewDateRange(models.Day(p.now()), p.trainingDays))
	if err != nil {
		return nil, fmt.Errorf("channel history: %w", err)
	}
	history := channelViewSeries(rows)
	if len(history) == 0 {
		return nil, apperror.Newf(apperror.KindValidation, "channel forecast",
			"no daily metrics synced for channel %s", channelID)
	}

	res, err := p.models.ForecastWithBand(ctx, modelType, history, horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", modelType, err)
	}

	out := &models.ChannelForecast{
		ChannelID:   channelID,
		ModelType:   modelType,
		ModelName:   res.ModelName,
		HistoryDays: len(history),
		Points:      make([]models.ForecastPoint, len(res.Predictions)),
	}
	for i, pt := range res.Predictions {
		out.Points[i] = models.ForecastPoint{Date: pt.Date, Value: pt.Value, Lower: pt.Value, Upper: pt.Value}
		if i < len(res.Lower) && i < len(res.Upper) {
			out.Points[i].Lower = res.Lower[i]
			out.Points[i].Upper = res.Upper[i]
		}
	}

	logging.Ctx(ctx).Debug().
		Str("channel_id", channelID).
		Str("model", res.ModelName).
		Int("history_days", len(history)).
		Int("horizon", horizon).
		Msg("Channel forecast served")
	return out, nil
}

// VideoNowcast projects a video's day-7 views. Day counts from the publish
// day through the last synced row; videos past day 6 or without a fitted
// curve get a flat projection at their current views.
func (p *Projector) VideoNowcast(ctx context.Context, channelID, videoID string) (*models.VideoNowcast, error) {
	videos, err := p.store.ListVideos(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	var video *models.Video
	for i := range videos {
		if videos[i].ID == videoID {
			video = &videos[i]
			break
		}
	}
	if video == nil {
		return nil, fmt.Errorf("%s in channel %s: %w", videoID, channelID, ErrVideoNotFound)
	}

	history, err := p.store.GetVideoViewHistory(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("view history: %w", err)
	}
	day, current := viewsSincePublish(*video, history)

	bucket := nowcast.DurationBucket(video.DurationSeconds)
	proj, err := p.curves.Nowcast(ctx, channelID, bucket, current, day)
	if err != nil {
		return nil, fmt.Errorf("nowcast %s: %w", videoID, err)
	}
	return &models.VideoNowcast{
		VideoID:        videoID,
		ChannelID:      channelID,
		DurationBucket: bucket,
		Day:            day,
		Current:        proj.Current,
		Predicted:      proj.Predicted,
		Low:            proj.Low,
		High:           proj.High,
		Extrapolated:   proj.Extrapolated,
	}, nil
}

// viewsSincePublish returns the number of days from the publish day through
// the last history row, and the views summed over them. Rows before the
// publish day are ignored.
func viewsSincePublish(v models.Video, history models.Series) (day int, total float64) {
	publish := models.Day(v.PublishedAt)
	for _, pt := range history {
		d := models.Day(pt.Date)
		if d.Before(publish) {
			continue
		}
		total += pt.Value
		if n := int(d.Sub(publish).Hours()/24) + 1; n > day {
			day = n
		}
	}
	return day, total
}
