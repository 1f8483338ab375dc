// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// TopicInsightCreated is the topic persisted insights are published on.
const TopicInsightCreated = "insights.created"

// Plugin outcomes recorded in metrics.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomePanic   = "panic"
)

// Store persists insights.
type Store interface {
	SaveInsights(ctx context.Context, insights []models.Insight) error
}

// RunSummary reports one sweep.
type RunSummary struct {
	Plugins   int               `json:"plugins"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Insights  int               `json:"insights"`
	Alerts    int               `json:"alerts"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Runner executes the registry against a Context.
type Runner struct {
	registry  *Registry
	store     Store
	publisher message.Publisher
	now       func() time.Time
}

// NewRunner creates a runner. publisher may be nil.
func NewRunner(registry *Registry, store Store, publisher message.Publisher) *Runner {
	return &Runner{
		registry:  registry,
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run executes every plugin in order. Plugin errors and panics are logged
// and skipped; each plugin's insights are persisted before the next runs.
// The returned error is non-nil only when persisting fails.
func (r *Runner) Run(ctx context.Context, pc *Context) (*RunSummary, error) {
	plugins := r.registry.Plugins()
	summary := &RunSummary{Plugins: len(plugins)}
	log := logging.Ctx(ctx)

	for _, p := range plugins {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		found, outcome, err := r.runPlugin(ctx, p, pc)
		if err != nil {
			summary.Failed++
			if summary.Errors == nil {
				summary.Errors = make(map[string]string)
			}
			summary.Errors[p.Name()] = err.Error()
			log.Warn().Err(err).Str("plugin", p.Name()).Str("outcome", outcome).Msg("Insight plugin failed, skipping")
			continue
		}
		summary.Succeeded++
		if len(found) == 0 {
			continue
		}

		r.stamp(pc, found)
		if err := r.store.SaveInsights(ctx, found); err != nil {
			return summary, fmt.Errorf("save insights from %s: %w", p.Name(), err)
		}
		for _, in := range found {
			metrics.RecordInsight(in.Type, in.Kind)
			if in.Kind == models.KindAlert {
				summary.Alerts++
			}
		}
		summary.Insights += len(found)
		r.publish(ctx, found)

		log.Debug().Str("plugin", p.Name()).Int("insights", len(found)).Msg("Insight plugin completed")
	}

	log.Info().
		Int("plugins", summary.Plugins).
		Int("failed", summary.Failed).
		Int("insights", summary.Insights).
		Int("alerts", summary.Alerts).
		Msg("Insight sweep completed")
	return summary, nil
}

// runPlugin executes one plugin, converting a panic into an error.
func (r *Runner) runPlugin(ctx context.Context, p Plugin, pc *Context) (found []models.Insight, outcome string, err error) {
	start := time.Now()
	outcome = outcomeSuccess
	defer func() {
		if rec := recover(); rec != nil {
			outcome = outcomePanic
			found = nil
			err = fmt.Errorf("plugin %s panicked: %v", p.Name(), rec)
			logging.Ctx(ctx).Error().Str("plugin", p.Name()).Str("stack", string(debug.Stack())).Msg("Insight plugin panic recovered")
		}
		metrics.RecordPluginRun(p.Name(), outcome, time.Since(start))
	}()

	found, err = p.Analyze(ctx, pc)
	if err != nil {
		outcome = outcomeError
		return nil, outcome, err
	}
	return found, outcome, nil
}

func (r *Runner) stamp(pc *Context, found []models.Insight) {
	now := r.now().UTC()
	for i := range found {
		in := &found[i]
		if in.ID == "" {
			in.ID = uuid.New().String()
		}
		in.RunID = pc.RunID
		in.ChannelID = pc.ChannelID
		if in.Kind == "" {
			in.Kind = models.KindInsight
		}
		if in.Severity == "" {
			in.Severity = models.SeverityInfo
		}
		if in.CreatedAt.IsZero() {
			in.CreatedAt = now
		}
	}
}

func (r *Runner) publish(ctx context.Context, found []models.Insight) {
	if r.publisher == nil {
		return
	}
	msgs := make([]*message.Message, 0, len(found))
	for _, in := range found {
		data, err := json.Marshal(in)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("insight_id", in.ID).Msg("Failed to encode insight event")
			continue
		}
		msg := message.NewMessage(in.ID, data)
		msg.Metadata.Set("run_id", in.RunID)
		msg.Metadata.Set("type", in.Type)
		msg.Metadata.Set("kind", in.Kind)
		msg.Metadata.Set("severity", in.Severity)
		msgs = append(msgs, msg)
	}
	if err := r.publisher.Publish(TopicInsightCreated, msgs...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("insights", len(msgs)).Msg("Failed to publish insight events")
	}
}
