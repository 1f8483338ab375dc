// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"google.golang.org/api/youtubeanalytics/v2"

	"github.com/tomtom215/tubelytics/internal/apperror"
	"github.com/tomtom215/tubelytics/internal/config"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// analyticsMetrics maps YouTube Analytics report columns to metric names.
var analyticsMetrics = map[string]string{
	"views":                              models.MetricViews,
	"estimatedMinutesWatched":            models.MetricWatchMinutes,
	"videoThumbnailImpressions":          models.MetricImpressions,
	"videoThumbnailImpressionsClickRate": models.MetricCTR,
	"likes":                              models.MetricLikes,
	"comments":                           models.MetricComments,
	"shares":                             models.MetricShares,
	"subscribersGained":                  models.MetricSubscribersGained,
}

// analyticsColumns is the ordered metrics list sent with every report query.
var analyticsColumns = []string{
	"views", "estimatedMinutesWatched", "videoThumbnailImpressions", "videoThumbnailImpressionsClickRate",
	"likes", "comments", "shares", "subscribersGained",
}

// YouTubeClient implements DataProvider on the YouTube Data API v3 and the
// YouTube Analytics API v2. Every call takes a token from the shared bucket
// and is retried according to the retry policy.
type YouTubeClient struct {
	data      *youtube.Service
	analytics *youtubeanalytics.Service
	bucket    *TokenBucket
	retry     RetryPolicy
	timeout   time.Duration
}

// NewYouTubeClient creates a client from cfg. An OAuth token takes
// precedence over an API key; the Analytics API only works with OAuth.
// Extra options are appended last and override credentials, which tests use
// to point the client at a local server.
func NewYouTubeClient(ctx context.Context, cfg *config.YouTubeConfig, extra ...option.ClientOption) (*YouTubeClient, error) {
	var opts []option.ClientOption
	switch {
	case cfg.OAuthToken != "":
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken})))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, extra...)

	data, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube data service: %w", err)
	}
	analytics, err := youtubeanalytics.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube analytics service: %w", err)
	}

	return &YouTubeClient{
		data:      data,
		analytics: analytics,
		bucket:    NewTokenBucket(cfg.RateCapacity, cfg.RateRefill),
		retry:     RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay},
		timeout:   cfg.Timeout,
	}, nil
}

// call runs one rate-limited, retried provider request and records it.
func call[T any](ctx context.Context, c *YouTubeClient, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := Retry(ctx, c.retry, op, func(ctx context.Context) (T, error) {
		var zero T
		if err := c.bucket.Acquire(ctx); err != nil {
			return zero, err
		}
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		out, err := fn(ctx)
		if err != nil {
			return zero, classify(op, err)
		}
		return out, nil
	})

	outcome := "success"
	if err != nil {
		outcome = string(apperror.Normalize(err).Kind)
	}
	metrics.RecordProviderRequest(op, outcome, time.Since(start))
	return result, err
}

// classify converts API failures into typed errors.
func classify(op string, err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		reasons := make([]string, 0, len(gerr.Errors))
		for _, item := range gerr.Errors {
			reasons = append(reasons, item.Reason)
		}
		return apperror.FromHTTPStatus(op, gerr.Code, reasons, err)
	}
	n := apperror.Normalize(err)
	return &apperror.Error{Kind: n.Kind, Op: op, Err: err}
}

// GetChannel returns the owned channel profile.
func (c *YouTubeClient) GetChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	ch, err := c.fetchChannel(ctx, "get channel", channelID)
	if err != nil {
		return nil, err
	}
	out := toChannel(ch, false)
	return &out, nil
}

// GetPublicChannel returns a competitor's public profile.
func (c *YouTubeClient) GetPublicChannel(ctx context.Context, channelID string) (*models.Channel, error) {
	ch, err := c.fetchChannel(ctx, "get public channel", channelID)
	if err != nil {
		return nil, err
	}
	out := toChannel(ch, true)
	return &out, nil
}

func (c *YouTubeClient) fetchChannel(ctx context.Context, op, channelID string) (*youtube.Channel, error) {
	resp, err := call(ctx, c, op, func(ctx context.Context) (*youtube.ChannelListResponse, error) {
		return c.data.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, apperror.Newf(apperror.KindValidation, op, "channel %s not found", channelID)
	}
	return resp.Items[0], nil
}

// ListVideos returns up to maxResults of the channel's most recent uploads.
func (c *YouTubeClient) ListVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error) {
	return c.listUploads(ctx, "list videos", channelID, maxResults, false)
}

// GetPublicVideos returns up to maxResults of a competitor's recent uploads.
func (c *YouTubeClient) GetPublicVideos(ctx context.Context, channelID string, maxResults int) ([]models.Video, error) {
	return c.listUploads(ctx, "list public videos", channelID, maxResults, true)
}

func (c *YouTubeClient) listUploads(ctx context.Context, op, channelID string, maxResults int, competitor bool) ([]models.Video, error) {
	if maxResults <= 0 || maxResults > MaxVideosPerChannel {
		maxResults = MaxVideosPerChannel
	}

	ch, err := c.fetchChannel(ctx, op, channelID)
	if err != nil {
		return nil, err
	}
	if ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists == nil || ch.ContentDetails.RelatedPlaylists.Uploads == "" {
		return nil, nil
	}
	uploads := ch.ContentDetails.RelatedPlaylists.Uploads

	items, err := call(ctx, c, op, func(ctx context.Context) (*youtube.PlaylistItemListResponse, error) {
		return c.data.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(uploads).
			MaxResults(int64(maxResults)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items.Items))
	for _, it := range items.Items {
		if it.ContentDetails != nil && it.ContentDetails.VideoId != "" {
			ids = append(ids, it.ContentDetails.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	resp, err := call(ctx, c, op, func(ctx context.Context) (*youtube.VideoListResponse, error) {
		return c.data.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(ids...).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v, err := toVideo(item, channelID, competitor)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindValidation, op, err)
		}
		videos = append(videos, v)
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})
	if len(videos) > maxResults {
		videos = videos[:maxResults]
	}
	return videos, nil
}

// GetChannelDailyMetrics returns the channel's daily report over r.
func (c *YouTubeClient) GetChannelDailyMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.MetricValue, error) {
	return c.report(ctx, "channel daily metrics", channelID, "", r)
}

// GetVideoDailyMetrics returns the daily report of each video over r. The
// Analytics API reports one video per query.
func (c *YouTubeClient) GetVideoDailyMetrics(ctx context.Context, videoIDs []string, r models.DateRange) ([]models.MetricValue, error) {
	var out []models.MetricValue
	for _, id := range videoIDs {
		values, err := c.report(ctx, "video daily metrics", id, "video=="+id, r)
		if err != nil {
			return nil, err
		}
		out = append(out, values...)
	}
	return out, nil
}

func (c *YouTubeClient) report(ctx context.Context, op, entityID, filter string, r models.DateRange) ([]models.MetricValue, error) {
	if err := r.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, op, err)
	}
	resp, err := call(ctx, c, op, func(ctx context.Context) (*youtubeanalytics.QueryResponse, error) {
		q := c.analytics.Reports.Query().
			Ids("channel==MINE").
			StartDate(r.Start.Format(models.DayLayout)).
			EndDate(r.End.Format(models.DayLayout)).
			Metrics(strings.Join(analyticsColumns, ",")).
			Dimensions("day").
			Sort("day")
		if filter != "" {
			q = q.Filters(filter)
		}
		return q.Context(ctx).Do()
	})
	if err != nil {
		return nil, err
	}
	values, err := reportValues(entityID, resp)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, op, err)
	}
	return values, nil
}

// reportValues flattens a day-dimension report into metric triples.
func reportValues(entityID string, resp *youtubeanalytics.QueryResponse) ([]models.MetricValue, error) {
	dayCol := -1
	for i, h := range resp.ColumnHeaders {
		if h.Name == "day" {
			dayCol = i
			break
		}
	}
	if dayCol < 0 {
		return nil, errors.New("report has no day column")
	}

	var out []models.MetricValue
	for _, row := range resp.Rows {
		if len(row) != len(resp.ColumnHeaders) {
			return nil, fmt.Errorf("report row has %d cells, want %d", len(row), len(resp.ColumnHeaders))
		}
		raw, ok := row[dayCol].(string)
		if !ok {
			return nil, fmt.Errorf("day cell is %T", row[dayCol])
		}
		day, err := time.Parse(models.DayLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", raw, err)
		}
		for i, h := range resp.ColumnHeaders {
			metric, known := analyticsMetrics[h.Name]
			if !known {
				continue
			}
			value, ok := row[i].(float64)
			if !ok {
				continue
			}
			// Click rate is reported as a percentage.
			if metric == models.MetricCTR {
				value /= 100
			}
			out = append(out, models.MetricValue{EntityID: entityID, Date: day, Metric: metric, Value: value})
		}
	}
	return out, nil
}

func toChannel(ch *youtube.Channel, competitor bool) models.Channel {
	out := models.Channel{ID: ch.Id, IsCompetitor: competitor}
	if ch.Snippet != nil {
		out.Title = ch.Snippet.Title
		if t, err := time.Parse(time.RFC3339, ch.Snippet.PublishedAt); err == nil {
			out.CreatedAt = t.UTC()
		}
	}
	if ch.Statistics != nil {
		out.SubscriberCount = int64(ch.Statistics.SubscriberCount)
		out.VideoCount = int64(ch.Statistics.VideoCount)
		out.ViewCount = int64(ch.Statistics.ViewCount)
	}
	return out
}

func toVideo(item *youtube.Video, channelID string, competitor bool) (models.Video, error) {
	v := models.Video{ID: item.Id, ChannelID: channelID, IsCompetitor: competitor}
	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		if item.Snippet.ChannelId != "" {
			v.ChannelID = item.Snippet.ChannelId
		}
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			return v, fmt.Errorf("video %s published_at: %w", item.Id, err)
		}
		v.PublishedAt = published.UTC()
	}
	if item.ContentDetails != nil && item.ContentDetails.Duration != "" {
		secs, err := parseISODuration(item.ContentDetails.Duration)
		if err != nil {
			return v, fmt.Errorf("video %s duration: %w", item.Id, err)
		}
		v.DurationSeconds = secs
	}
	if item.Statistics != nil {
		v.ViewCount = int64(item.Statistics.ViewCount)
	}
	return v, nil
}

// parseISODuration parses the ISO 8601 durations the Data API returns,
// e.g. "PT1H2M3S" or "P1DT30S", into seconds.
func parseISODuration(s string) (int, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total, n := 0, 0
	inTime, digits := false, false
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
			digits = true
			continue
		case r == 'T':
			inTime = true
			continue
		}
		if !digits {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		switch {
		case r == 'W' && !inTime:
			total += n * 7 * 86400
		case r == 'D' && !inTime:
			total += n * 86400
		case r == 'H' && inTime:
			total += n * 3600
		case r == 'M' && inTime:
			total += n * 60
		case r == 'S' && inTime:
			total += n
		default:
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		n, digits = 0, false
	}
	if digits {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}
