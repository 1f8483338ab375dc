// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/models"
)

// Plugin analyzes a channel and returns insights. Expected "nothing to
// report" conditions return an empty slice, not an error.
type Plugin interface {
	Name() string
	Analyze(ctx context.Context, pc *Context) ([]models.Insight, error)
}

// DataAccess is the read-only view of the store available to plugins.
type DataAccess interface {
	GetChannelMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.ChannelDayMetric, error)
	GetChannelVideoMetrics(ctx context.Context, channelID string, r models.DateRange) ([]models.VideoDayMetric, error)
	ListVideos(ctx context.Context, channelID string) ([]models.Video, error)
	ListCompetitorVideos(ctx context.Context) ([]models.Video, error)
	ListQualityScores(ctx context.Context, channelID string) ([]models.QualityScore, error)
	ListMomentumHits(ctx context.Context, since time.Time) ([]models.MomentumRecord, error)
}

// Context is shared by every plugin of one sweep.
type Context struct {
	RunID     string
	ChannelID string
	Range     models.DateRange
	Data      DataAccess
}

// Registry holds plugins in registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	names   map[string]struct{}
}

// NewRegistry creates a registry and registers plugins.
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{names: make(map[string]struct{})}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends p. Names must be unique and non-empty.
func (r *Registry) Register(p Plugin) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("plugin must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[p.Name()]; ok {
		return fmt.Errorf("plugin %q already registered", p.Name())
	}
	r.names[p.Name()] = struct{}{}
	r.plugins = append(r.plugins, p)

	logging.Debug().Str("plugin", p.Name()).Msg("registered insight plugin")
	return nil
}

// Plugins returns a snapshot of the registered plugins.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Names returns the registered plugin names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		out[i] = p.Name()
	}
	return out
}

// newInsight builds an insight of typ with evidence encoded as JSON.
// Run metadata is stamped by the Runner.
func newInsight(typ, kind, severity, title, description string, evidence any) models.Insight {
	in := models.Insight{
		Kind:        kind,
		Type:        typ,
		Severity:    severity,
		Title:       title,
		Description: description,
	}
	if evidence != nil {
		if raw, err := json.Marshal(evidence); err == nil {
			in.Evidence = raw
		}
	}
	return in
}
