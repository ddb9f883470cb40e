package service

import (
	"context"
	"strings"

	"ai-reportgen-be/internal/pkg/logger"
	"ai-reportgen-be/internal/websocket"
	"ai-reportgen-be/pkg/events"
	pktNats "ai-reportgen-be/pkg/nats"

	"github.com/google/uuid"
)

// RunEventService relays run lifecycle events from the NATS bus to websocket
// clients, so clients learn about runs started by other service instances.
type RunEventService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewRunEventService(sub *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *RunEventService {
	return &RunEventService{
		subscriber: sub,
		hub:        hub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *RunEventService) Start() {
	err := s.subscriber.Subscribe("events.>", "run-event-relay", s.handleEvent)
	if err != nil {
		s.logger.Error("RunEventService", "Failed to start run event subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("RunEventService", "Run event relay started, listening to events.>", nil)
}

func (s *RunEventService) handleEvent(ctx context.Context, event events.Event) error {
	if !strings.HasPrefix(event.EventType(), "REPORT_RUN_") {
		return nil
	}
	payload := event.Payload()

	raw, ok := payload["conversation_id"].(string)
	if !ok {
		s.logger.Warn("RunEventService", "Event without conversation_id, skipping", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	cid, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("RunEventService", "Invalid conversation_id in event", map[string]interface{}{"value": raw})
		return nil
	}

	s.hub.Send(cid, "run_event", map[string]interface{}{
		"event":   event.EventType(),
		"payload": payload,
	})
	return nil
}
