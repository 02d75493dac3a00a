package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/pkg/logger"
	"knowledge-copilot-be/internal/pkg/mailer"
	"knowledge-copilot-be/internal/repository/unitofwork"
	"knowledge-copilot-be/pkg/events"
	pktNats "knowledge-copilot-be/pkg/nats"
)

type IAuditConsumerService interface {
	Consume(ctx context.Context) error
}

// auditConsumerService drains the in-process audit topic and persists each
// record. The ask path never blocks on the audit write; durability is
// enforced here with a bounded retry budget and an ops escalation when the
// budget runs out. After a successful write the record is mirrored onto the
// event bus for the compliance live feed.
type auditConsumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	emailService   mailer.IEmailService
	writeRetries   int
	logger         logger.ILogger
}

func NewAuditConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	emailService mailer.IEmailService,
	writeRetries int,
	log logger.ILogger,
) IAuditConsumerService {
	if writeRetries < 1 {
		writeRetries = 1
	}
	return &auditConsumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		writeRetries:   writeRetries,
		logger:         log,
	}
}

func (cs *auditConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *auditConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishAuditRecordMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("AuditConsumer", "Failed to unmarshal audit message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Malformed payload never becomes valid; do not retry.
		return
	}

	record := &entity.AuditRecord{
		Id:                payload.Id,
		RequesterId:       payload.RequesterId,
		RoleNames:         payload.RoleNames,
		Question:          payload.Question,
		RequestLanguage:   payload.RequestLanguage,
		ResponseLanguage:  payload.ResponseLanguage,
		RetrievedChunkIds: payload.RetrievedChunkIds,
		Answer:            payload.Answer,
		Confidence:        payload.Confidence,
		EmbeddingModel:    payload.EmbeddingModel,
		LLMModel:          payload.LLMModel,
		TraceId:           payload.TraceId,
		LatencyMs:         payload.LatencyMs,
		CreatedAt:         payload.CreatedAt,
	}

	var lastErr error
	for attempt := 1; attempt <= cs.writeRetries; attempt++ {
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		lastErr = uow.AuditRepository().Create(ctx, record)
		if lastErr == nil {
			break
		}
		cs.logger.Warn("AuditConsumer", "Audit write failed, retrying", map[string]interface{}{
			"trace_id": payload.TraceId,
			"attempt":  attempt,
			"error":    lastErr.Error(),
		})
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}

	if lastErr != nil {
		cs.logger.Error("AuditConsumer", "Audit write exhausted retry budget", map[string]interface{}{
			"trace_id": payload.TraceId,
			"error":    lastErr.Error(),
		})
		if cs.emailService != nil {
			detail := fmt.Sprintf("trace_id: %s\nrequester: %s\nerror: %v", payload.TraceId, payload.RequesterId, lastErr)
			_ = cs.emailService.SendOpsAlert("Audit record write failed", detail)
		}
		msg.Nack() // Keep the record in flight; losing it is worse than redelivery.
		return
	}

	cs.publishFeedEvent(ctx, &payload)
	msg.Ack()
}

// publishFeedEvent mirrors the persisted record onto the event bus. Failures
// are logged only: the record is already durable and the feed is best-effort.
func (cs *auditConsumerService) publishFeedEvent(ctx context.Context, payload *dto.PublishAuditRecordMessage) {
	if cs.eventPublisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type: "AUDIT_RECORD_WRITTEN",
		Data: map[string]interface{}{
			"trace_id":     payload.TraceId,
			"requester_id": payload.RequesterId,
			"question":     payload.Question,
			"confidence":   payload.Confidence,
			"refused":      payload.Refused,
			"latency_ms":   payload.LatencyMs,
			"created_at":   payload.CreatedAt.Format(time.RFC3339),
		},
		OccurredAt: payload.CreatedAt,
	}

	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("AuditConsumer", "Failed to publish audit feed event", map[string]interface{}{
			"trace_id": payload.TraceId,
			"error":    err.Error(),
		})
	}
}
