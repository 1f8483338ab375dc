// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package services

import (
	"context"
	"fmt"
)

// MessageRouter matches the watermill *message.Router lifecycle.
type MessageRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router. A closed watermill router cannot be
// run again, so every restart asks for a new one.
type RouterFactory func() (MessageRouter, error)

// RouterService wraps the insight event router as a supervised service.
//
//	svc := services.NewRouterService(func() (services.MessageRouter, error) {
//	    return insights.NewEventRouter(pubSub, nil)
//	})
//	tree.AddMessagingService(svc)
type RouterService struct {
	build RouterFactory
	name  string
}

// NewRouterService creates a new router service wrapper.
func NewRouterService(build RouterFactory) *RouterService {
	return &RouterService{
		build: build,
		name:  "insight-event-router",
	}
}

// Serve implements suture.Service. Run blocks until ctx is canceled, after
// which the router has already closed its handlers.
func (s *RouterService) Serve(ctx context.Context) error {
	router, err := s.build()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	if err := router.Run(ctx); err != nil {
		_ = router.Close()
		return fmt.Errorf("event router failed: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// Run returned without cancellation: the router was closed externally.
	return fmt.Errorf("event router stopped unexpectedly")
}

// String implements fmt.Stringer for logging.
func (s *RouterService) String() string {
	return s.name
}
