// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

package insights

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tubelytics/internal/logging"
	"github.com/tomtom215/tubelytics/internal/metrics"
	"github.com/tomtom215/tubelytics/internal/models"
)

// EventHandlerName is the router handler that consumes insight events.
const EventHandlerName = "insight-event-logger"

// NewEventRouter builds a watermill router that consumes TopicInsightCreated
// from sub and passes each event to HandleInsightEvent. A nil logger writes
// through the zerolog-backed slog logger.
func NewEventRouter(sub message.Subscriber, logger watermill.LoggerAdapter) (*message.Router, error) {
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create insight event router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	router.AddConsumerHandler(EventHandlerName, TopicInsightCreated, sub, HandleInsightEvent)
	return router, nil
}

// HandleInsightEvent logs one insight event. Malformed payloads are acked and
// dropped so they are not redelivered forever.
func HandleInsightEvent(msg *message.Message) error {
	var in models.Insight
	if err := json.Unmarshal(msg.Payload, &in); err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed insight event")
		return nil
	}
	metrics.RecordInsightEvent(in.Severity)

	ev := logging.Info()
	switch in.Severity {
	case models.SeverityCritical:
		ev = logging.Error()
	case models.SeverityWarning:
		ev = logging.Warn()
	}
	ev.Str("run_id", in.RunID).
		Str("channel_id", in.ChannelID).
		Str("insight_type", in.Type).
		Str("kind", in.Kind).
		Str("severity", in.Severity).
		Msg(in.Title)
	return nil
}
