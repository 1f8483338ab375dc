// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

// Package scoring computes competitor momentum and per-video quality scores.
//
// Momentum is self-relative: a competitor video is a "hit" on a day when its
// 24-hour view velocity exceeds both its own historical 95th percentile and
// an absolute floor. Quality is a 0-100 composite of view velocity, watch
// efficiency and engagement conversion over the trailing 28 days, each
// normalized against a benchmark.
package scoring
