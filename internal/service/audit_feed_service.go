package service

import (
	"context"
	"time"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/pkg/logger"
	"knowledge-copilot-be/pkg/events"
	pktNats "knowledge-copilot-be/pkg/nats"
)

// FeedDelivery pushes live audit events to attached watchers. Implemented
// by the websocket hub.
type FeedDelivery interface {
	Broadcast(event dto.AuditFeedEvent)
}

type IAuditFeedService interface {
	Start()
}

// auditFeedService bridges the event bus to the live feed: every persisted
// audit record is rebroadcast to compliance watchers in near real time.
type auditFeedService struct {
	subscriber *pktNats.Subscriber
	delivery   FeedDelivery
	logger     logger.ILogger
}

func NewAuditFeedService(sub *pktNats.Subscriber, delivery FeedDelivery, log logger.ILogger) IAuditFeedService {
	return &auditFeedService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *auditFeedService) Start() {
	err := s.subscriber.Subscribe("events.AUDIT_RECORD_WRITTEN", "audit-feed-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("AuditFeedService", "Failed to start audit feed subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("AuditFeedService", "Audit feed service started, listening to events.AUDIT_RECORD_WRITTEN", nil)
}

func (s *auditFeedService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	feedEvent := dto.AuditFeedEvent{
		TraceId:     stringField(payload, "trace_id"),
		RequesterId: stringField(payload, "requester_id"),
		Question:    stringField(payload, "question"),
		Confidence:  stringField(payload, "confidence"),
		CreatedAt:   time.Now(),
	}
	if refused, ok := payload["refused"].(bool); ok {
		feedEvent.Refused = refused
	}
	if latency, ok := payload["latency_ms"].(float64); ok {
		feedEvent.LatencyMs = int64(latency)
	}
	if raw := stringField(payload, "created_at"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			feedEvent.CreatedAt = ts
		}
	}

	if s.delivery != nil {
		s.delivery.Broadcast(feedEvent)
	}
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
