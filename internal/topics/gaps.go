// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package topics

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/tubelytics/internal/logging"
)

const (
	// GapCompetitorFraction is the competitor share above which a cluster is a gap.
	GapCompetitorFraction = 0.7
	// GapMinMembers is the minimum cluster size for a gap.
	GapMinMembers = 3

	labelTerms = 3
)

// Item is a titled video to cluster.
type Item struct {
	VideoID      string
	Title        string
	IsCompetitor bool
}

// Namer produces a human-readable cluster label. Implementations typically
// call a text-generation service.
type Namer interface {
	Name(ctx context.Context, terms, titles []string) (string, error)
}

// KeywordNamer labels a cluster with its top terms.
type KeywordNamer struct{}

// Name implements Namer.
func (KeywordNamer) Name(_ context.Context, terms, _ []string) (string, error) {
	if len(terms) == 0 {
		return "untitled", nil
	}
	return strings.Join(terms, " / "), nil
}

// Options configures Analyze.
type Options struct {
	K       int
	Seed    uint64
	MaxIter int
	Namer   Namer
}

// Cluster is one topic cluster with its gap score.
type Cluster struct {
	ID                 int      `json:"id"`
	Label              string   `json:"label"`
	Terms              []string `json:"terms"`
	VideoIDs           []string `json:"video_ids"`
	Size               int      `json:"size"`
	CompetitorCount    int      `json:"competitor_count"`
	CompetitorFraction float64  `json:"competitor_fraction"`
	IsGap              bool     `json:"is_gap"`
	Reason             string   `json:"reason,omitempty"`
}

// Analyze clusters items by title and scores each cluster for coverage gaps.
// Empty clusters are omitted.
func Analyze(ctx context.Context, items []Item, opts Options) []Cluster {
	if len(items) == 0 {
		return nil
	}
	if opts.Namer == nil {
		opts.Namer = KeywordNamer{}
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	matrix := Vectorize(titles)
	km := KMeans(matrix.Vectors, opts.K, opts.Seed, opts.MaxIter)

	members := make([][]int, km.K)
	for i, a := range km.Assignments {
		if a >= 0 {
			members[a] = append(members[a], i)
		}
	}

	clusters := make([]Cluster, 0, km.K)
	for id, idx := range members {
		if len(idx) == 0 {
			continue
		}
		c := Cluster{ID: id, Size: len(idx), Terms: matrix.TopTerms(km.Centroids[id], labelTerms)}
		memberTitles := make([]string, 0, len(idx))
		for _, i := range idx {
			c.VideoIDs = append(c.VideoIDs, items[i].VideoID)
			memberTitles = append(memberTitles, items[i].Title)
			if items[i].IsCompetitor {
				c.CompetitorCount++
			}
		}
		c.CompetitorFraction = float64(c.CompetitorCount) / float64(c.Size)
		c.Label = label(ctx, opts.Namer, c.Terms, memberTitles)

		if c.CompetitorFraction > GapCompetitorFraction && c.Size >= GapMinMembers {
			c.IsGap = true
			c.Reason = fmt.Sprintf("%d of %d videos about %q are from competitors (%.0f%%); you have %d",
				c.CompetitorCount, c.Size, c.Label, c.CompetitorFraction*100, c.Size-c.CompetitorCount)
		}
		clusters = append(clusters, c)
	}
	return clusters
}

// FindGaps returns only the clusters flagged as gaps.
func FindGaps(ctx context.Context, items []Item, opts Options) []Cluster {
	var gaps []Cluster
	for _, c := range Analyze(ctx, items, opts) {
		if c.IsGap {
			gaps = append(gaps, c)
		}
	}
	return gaps
}

func label(ctx context.Context, namer Namer, terms, titles []string) string {
	name, err := namer.Name(ctx, terms, titles)
	if err == nil && name != "" {
		return name
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Strs("terms", terms).Msg("Cluster namer failed, using keywords")
	}
	fallback, _ := KeywordNamer{}.Name(ctx, terms, titles)
	return fallback
}
