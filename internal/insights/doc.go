// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package insights turns derived channel metrics into insights and alerts.

A Plugin inspects a read-only Context (run id, channel id, date range and a
DataAccess handle) and returns zero or more models.Insight values. Plugins
are registered by name in a Registry and executed in registration order by
a Runner.

# Failure Isolation

The Runner executes plugins sequentially. A plugin that returns an error or
panics is logged, counted in insight_plugin_runs_total and skipped; the
remaining plugins still run and their insights are still persisted. Only
store failures abort a sweep.

# Publishing

Persisted insights are optionally published to a watermill
message.Publisher on TopicInsightCreated. The payload is the JSON-encoded
insight and the message UUID is the insight id. Publish failures are logged
and never fail the sweep.

# Standard Plugins

	top_movers          biggest week-over-week view changes
	ctr_bottleneck      high-impression videos with weak click-through
	anomaly_days        spike and drop days in channel views
	sleeper_videos      older videos picking up traction
	quality_ranking     engagement-weighted quality leaderboard
	ctr_drop_alert      channel CTR drop with a remediation playbook
	competitor_hit_gap  competitor hits inside topics the channel does not cover
	trend_break         structural level shift in channel views
*/
package insights
