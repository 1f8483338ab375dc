// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

// Package topics clusters video titles with TF-IDF and seeded k-means and
// scores clusters for content gaps against competitor coverage.
//
// IDF is log(N/(1+df)), which is zero or negative for terms present in most
// titles. Common terms therefore pull vectors apart rather than together;
// this is intentional and callers should not rely on non-negative weights.
package topics

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "you": {}, "your": {}, "this": {},
	"that": {}, "how": {}, "what": {}, "why": {}, "are": {}, "was": {}, "from": {},
	"not": {}, "but": {}, "all": {}, "can": {}, "out": {}, "get": {}, "has": {},
	"have": {}, "will": {}, "its": {}, "our": {}, "who": {}, "into": {}, "about": {},
	"just": {}, "than": {}, "then": {}, "them": {}, "they": {}, "these": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "more": {}, "most": {}, "some": {}, "any": {},
	"one": {}, "new": {}, "vs": {}, "part": {},
}

// Tokenize lower-cases title, splits on non-alphanumerics and drops stop
// words and tokens of two characters or fewer.
func Tokenize(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) <= 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Matrix is a TF-IDF document-term matrix.
type Matrix struct {
	// Vocabulary is sorted; column j of every vector is Vocabulary[j].
	Vocabulary []string
	IDF        []float64
	Vectors    [][]float64
}

// Vectorize builds the TF-IDF matrix for docs. Term frequency is count over
// document token length.
func Vectorize(docs []string) *Matrix {
	tokenized := make([][]string, len(docs))
	docFreq := make(map[string]int)
	for i, d := range docs {
		tokens := Tokenize(d)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	vocab := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log(n / float64(1+docFreq[term]))
	}

	vectors := make([][]float64, len(docs))
	for i, tokens := range tokenized {
		vec := make([]float64, len(vocab))
		if len(tokens) > 0 {
			counts := make(map[int]int, len(tokens))
			for _, tok := range tokens {
				counts[index[tok]]++
			}
			for j, c := range counts {
				vec[j] = float64(c) / float64(len(tokens)) * idf[j]
			}
		}
		vectors[i] = vec
	}

	return &Matrix{Vocabulary: vocab, IDF: idf, Vectors: vectors}
}

// TopTerms returns up to n vocabulary terms with the largest weights in vec,
// ties broken alphabetically. Zero weights are skipped.
func (m *Matrix) TopTerms(vec []float64, n int) []string {
	idx := make([]int, 0, len(vec))
	for j, w := range vec {
		if w != 0 {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return vec[idx[a]] > vec[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = m.Vocabulary[j]
	}
	return out
}
