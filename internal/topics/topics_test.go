// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package topics

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := Tokenize("How To Build a Go Web-Server: the COMPLETE guide!")
	want := []string{"build", "web", "server", "complete", "guide"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestVectorize(t *testing.T) {
	t.Parallel()

	m := Vectorize([]string{"golang tutorial", "golang generics", "sourdough bread"})
	want := []string{"bread", "generics", "golang", "sourdough", "tutorial"}
	if !reflect.DeepEqual(m.Vocabulary, want) {
		t.Fatalf("Vocabulary = %v, want %v", m.Vocabulary, want)
	}

	// golang appears in 2 of 3 docs: log(3/3) = 0
	golang := 2
	if m.IDF[golang] != 0 {
		t.Errorf("IDF(golang) = %v, want 0", m.IDF[golang])
	}
	// tutorial appears once: log(3/2)
	tutorial := 4
	if math.Abs(m.IDF[tutorial]-math.Log(1.5)) > 1e-12 {
		t.Errorf("IDF(tutorial) = %v, want %v", m.IDF[tutorial], math.Log(1.5))
	}
	// tf = 1/2 for a two-token title
	if math.Abs(m.Vectors[0][tutorial]-0.5*math.Log(1.5)) > 1e-12 {
		t.Errorf("tfidf = %v", m.Vectors[0][tutorial])
	}
}

func TestKMeansDeterministicAndClamped(t *testing.T) {
	t.Parallel()

	vectors := [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}, {0, 0.5}, {10, 10.5}}

	a := KMeans(vectors, 2, 42, 0)
	b := KMeans(vectors, 2, 42, 0)
	if !reflect.DeepEqual(a.Assignments, b.Assignments) {
		t.Error("same seed should give identical assignments")
	}
	if !a.Converged {
		t.Error("expected convergence")
	}
	if a.Assignments[0] != a.Assignments[1] || a.Assignments[0] != a.Assignments[4] {
		t.Errorf("low points split across clusters: %v", a.Assignments)
	}
	if a.Assignments[2] != a.Assignments[3] || a.Assignments[0] == a.Assignments[2] {
		t.Errorf("unexpected assignments: %v", a.Assignments)
	}

	c := KMeans(vectors[:2], 5, 1, 0)
	if c.K != 2 {
		t.Errorf("K = %d, want 2 when k exceeds population", c.K)
	}
}

func gapItems() []Item {
	return []Item{
		{VideoID: "c1", Title: "Sourdough starter basics", IsCompetitor: true},
		{VideoID: "c2", Title: "Sourdough starter feeding", IsCompetitor: true},
		{VideoID: "c3", Title: "Sourdough starter rescue", IsCompetitor: true},
		{VideoID: "c4", Title: "Sourdough starter hydration", IsCompetitor: true},
		{VideoID: "o1", Title: "Sourdough starter from scratch"},
	}
}

func TestFindGaps(t *testing.T) {
	t.Parallel()

	gaps := FindGaps(context.Background(), gapItems(), Options{K: 1, Seed: 7})
	if len(gaps) != 1 {
		t.Fatalf("got %d gaps, want 1: %+v", len(gaps), gaps)
	}
	g := gaps[0]
	if g.Size != 5 || g.CompetitorCount != 4 {
		t.Errorf("gap = %+v, want 4 of 5 competitor videos", g)
	}
	if math.Abs(g.CompetitorFraction-0.8) > 1e-12 {
		t.Errorf("CompetitorFraction = %v, want 0.8", g.CompetitorFraction)
	}
	if g.Reason == "" {
		t.Error("gap should carry a reason")
	}
}

func TestFindGapsThresholds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	small := gapItems()[:2]
	if gaps := FindGaps(ctx, small, Options{K: 1, Seed: 1}); len(gaps) != 0 {
		t.Errorf("clusters under %d members must not be gaps", GapMinMembers)
	}

	// 7 of 10 is not above the threshold
	var balanced []Item
	for i := 0; i < 10; i++ {
		balanced = append(balanced, Item{
			VideoID:      string(rune('a' + i)),
			Title:        "Sourdough starter",
			IsCompetitor: i < 7,
		})
	}
	if gaps := FindGaps(ctx, balanced, Options{K: 1, Seed: 1}); len(gaps) != 0 {
		t.Errorf("fraction of exactly 0.7 must not be a gap")
	}
}

type failingNamer struct{}

func (failingNamer) Name(context.Context, []string, []string) (string, error) {
	return "", errors.New("service unavailable")
}

type fixedNamer string

func (f fixedNamer) Name(context.Context, []string, []string) (string, error) {
	return string(f), nil
}

func TestAnalyzeNamer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	named := Analyze(ctx, gapItems(), Options{K: 1, Seed: 7, Namer: fixedNamer("Topic")})
	for _, c := range named {
		if c.Label != "Topic" {
			t.Errorf("Label = %q, want namer output", c.Label)
		}
	}

	fallback := Analyze(ctx, gapItems(), Options{K: 1, Seed: 7, Namer: failingNamer{}})
	for _, c := range fallback {
		if c.Label == "" || c.Label == "Topic" {
			t.Errorf("Label = %q, want keyword fallback", c.Label)
		}
	}
}
