// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package topics

import (
	"math"
	"math/rand/v2"
)

// DefaultMaxIterations caps k-means iterations.
const DefaultMaxIterations = 100

// Clustering is the result of KMeans.
type Clustering struct {
	K           int
	Assignments []int
	Centroids   [][]float64
	Iterations  int
	Converged   bool
}

// KMeans partitions vectors into k clusters. The input order is shuffled with
// a PCG generator seeded by seed and the first k vectors become the initial
// centroids, so results are deterministic for a given seed. k is reduced to
// the number of vectors when larger.
func KMeans(vectors [][]float64, k int, seed uint64, maxIter int) *Clustering {
	n := len(vectors)
	if k > n {
		k = n
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	c := &Clustering{K: k, Assignments: make([]int, n)}
	if k <= 0 {
		return c
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	c.Centroids = make([][]float64, k)
	for i := 0; i < k; i++ {
		c.Centroids[i] = append([]float64(nil), vectors[perm[i]]...)
	}

	for i := range c.Assignments {
		c.Assignments[i] = -1
	}

	for iter := 1; iter <= maxIter; iter++ {
		c.Iterations = iter
		changed := false
		for i, v := range vectors {
			best := nearest(v, c.Centroids)
			if c.Assignments[i] != best {
				c.Assignments[i] = best
				changed = true
			}
		}
		if !changed {
			c.Converged = true
			break
		}
		updateCentroids(vectors, c.Assignments, c.Centroids)
	}
	return c
}

func nearest(v []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for j, cen := range centroids {
		if d := squaredDistance(v, cen); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// updateCentroids recomputes each centroid as its members' mean. Empty
// clusters keep their previous centroid.
func updateCentroids(vectors [][]float64, assignments []int, centroids [][]float64) {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for j := range sums {
		sums[j] = make([]float64, dim)
	}
	for i, v := range vectors {
		a := assignments[i]
		counts[a]++
		for d := range v {
			sums[a][d] += v[d]
		}
	}
	for j := range centroids {
		if counts[j] == 0 {
			continue
		}
		for d := range centroids[j] {
			centroids[j][d] = sums[j][d] / float64(counts[j])
		}
	}
}
