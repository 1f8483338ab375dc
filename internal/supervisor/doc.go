// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

/*
Package supervisor provides process supervision for Tubelytics using suture v4.

All long-running components run under a hierarchical supervisor tree with
automatic restart, failure isolation and graceful shutdown.

# Overview

	RootSupervisor ("tubelytics")
	├── MessagingSupervisor ("messaging-layer")
	│   └── RouterService (insight event router)
	├── SyncSupervisor ("sync-layer")
	│   └── SyncService (sync.Scheduler)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing provider restarts the scheduler without affecting the HTTP server,
so /healthz and the run history stay available.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewRouterService(router))
	tree.AddSyncService(services.NewSyncService(scheduler))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	// Blocks until ctx is canceled.
	err = tree.Serve(ctx)

# Logging

Supervisor events (service start, failure, restart, backoff) are written
through the sutureslog hook. The slog logger passed to NewSupervisorTree is
normally logging.NewSlogLogger, which forwards to zerolog.

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
