// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package services provides suture.Service wrappers for Tubelytics components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern and implements fmt.Stringer so supervisor logs name it.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server (ListenAndServe/Shutdown)
  - Drains connections within a shutdown timeout

Sync Scheduler (SyncService):
  - Wraps sync.Scheduler (Start/Stop)
  - Stop waits for an in-flight run to finish

Event Router (RouterService):
  - Wraps a watermill message.Router (Run/Close)
  - Consumes insight events published by the insights runner

# Error Handling

Return values determine supervisor behavior:

	nil         -> service stopped cleanly, will not restart
	error       -> service crashed, supervisor will restart
	ctx.Err()   -> shutdown requested, normal termination

# Thread Safety

Wrappers hold no mutable state of their own. Calling Serve concurrently on
the same wrapper is not supported.
*/
package services
