// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package models defines data structures for the Tubelytics application.

This package contains the persisted entities, the derived analytics rows and the
small value types (Series, DateRange) shared by the statistical packages. It is
the single source of truth for data structure definitions.

Key Components:

  - Channel / Video: owned and competitor catalogue entities
  - ChannelDayMetric / VideoDayMetric: per-day fact rows keyed by (entity, day)
  - CompetitorSnapshot: cumulative competitor view counts
  - MomentumRecord / QualityScore / GrowthCurvePoint: derived analytics
  - ForecastModelRecord: model registry rows (one active per type)
  - Insight: append-only analyzer output
  - SyncRun: orchestrator execution history

Days:

All day-granular timestamps are UTC midnight. Use Day() to normalize values
coming from the provider before they are used as keys.

JSON Serialization:

All structs carry snake_case json tags so they can be served directly by the
operational API and embedded in insight evidence.
*/
package models
