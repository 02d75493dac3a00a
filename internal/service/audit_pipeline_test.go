package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/contract"
	"knowledge-copilot-be/internal/repository/specification"
	"knowledge-copilot-be/internal/repository/unitofwork"
)

// stubAuditRepo records writes in memory and can be told to fail.
type stubAuditRepo struct {
	mu      sync.Mutex
	records []*entity.AuditRecord
	failAll bool
	calls   int
}

func (s *stubAuditRepo) Create(ctx context.Context, record *entity.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failAll {
		return errors.New("insert failed")
	}
	s.records = append(s.records, record)
	return nil
}

func (s *stubAuditRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, nil
}

func (s *stubAuditRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *stubAuditRepo) snapshot() []*entity.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.AuditRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *stubAuditRepo) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubUow satisfies the unit-of-work surface; only the audit repository is
// exercised by the consumer.
type stubUow struct {
	audit *stubAuditRepo
}

func (u *stubUow) Begin(ctx context.Context) error { return nil }
func (u *stubUow) Commit() error                   { return nil }
func (u *stubUow) Rollback() error                 { return nil }

func (u *stubUow) DocumentRepository() contract.DocumentRepository             { return nil }
func (u *stubUow) ChunkRepository() contract.ChunkRepository                   { return nil }
func (u *stubUow) ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository { return nil }
func (u *stubUow) RoleRepository() contract.RoleRepository                     { return nil }
func (u *stubUow) AccessGrantRepository() contract.AccessGrantRepository       { return nil }
func (u *stubUow) AuditRepository() contract.AuditRepository                   { return u.audit }

type stubFactory struct {
	uow *stubUow
}

func (f *stubFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type stubMailer struct {
	mu       sync.Mutex
	subjects []string
}

func (m *stubMailer) SendOpsAlert(subject, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *stubMailer) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func auditMessage() dto.PublishAuditRecordMessage {
	return dto.PublishAuditRecordMessage{
		Id:                uuid.New(),
		RequesterId:       "user-1",
		RoleNames:         []string{"employee"},
		Question:          "What documents do I need to open a retail account?",
		RequestLanguage:   "auto",
		ResponseLanguage:  "en",
		RetrievedChunkIds: []uuid.UUID{uuid.New(), uuid.New()},
		Answer:            "A civil ID, proof of address, and a signed KYC questionnaire.",
		Confidence:        "high",
		EmbeddingModel:    "bge-m3",
		LLMModel:          "stub-model",
		TraceId:           uuid.NewString(),
		LatencyMs:         412,
		CreatedAt:         time.Now().UTC().Truncate(time.Second),
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// Publishes a record through the in-process topic and expects the consumer
// to persist it with the payload intact.
func TestAuditPipelineRoundtrip(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	repo := &stubAuditRepo{}
	factory := &stubFactory{uow: &stubUow{audit: repo}}
	mail := &stubMailer{}

	consumer := NewAuditConsumerService(pubSub, "AUDIT_RECORD_WRITE", factory, nil, mail, 3, nopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService("AUDIT_RECORD_WRITE", pubSub)

	msg := auditMessage()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(context.Background(), payload))

	waitFor(t, 2*time.Second, func() bool { return len(repo.snapshot()) == 1 })

	got := repo.snapshot()[0]
	assert.Equal(t, msg.Id, got.Id)
	assert.Equal(t, msg.RequesterId, got.RequesterId)
	assert.Equal(t, msg.RoleNames, got.RoleNames)
	assert.Equal(t, msg.Question, got.Question)
	assert.Equal(t, msg.Confidence, got.Confidence)
	assert.Equal(t, msg.RetrievedChunkIds, got.RetrievedChunkIds)
	assert.Equal(t, msg.EmbeddingModel, got.EmbeddingModel)
	assert.Equal(t, msg.LLMModel, got.LLMModel)
	assert.Equal(t, msg.TraceId, got.TraceId)
	assert.Equal(t, msg.LatencyMs, got.LatencyMs)
	assert.True(t, msg.CreatedAt.Equal(got.CreatedAt))
	assert.Zero(t, mail.alertCount())
}

// A payload that never parses must be dropped without a retry storm.
func TestAuditPipelineDropsMalformedPayload(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	repo := &stubAuditRepo{}
	factory := &stubFactory{uow: &stubUow{audit: repo}}

	consumer := NewAuditConsumerService(pubSub, "AUDIT_RECORD_WRITE", factory, nil, nil, 3, nopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService("AUDIT_RECORD_WRITE", pubSub)
	require.NoError(t, publisher.Publish(context.Background(), []byte("not json")))

	// Give the consumer a moment; the write path must never be reached.
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, repo.callCount())
}

// When every write attempt fails, the consumer escalates to ops and keeps
// the record unacknowledged instead of silently losing it.
func TestAuditPipelineEscalatesOnWriteExhaustion(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	repo := &stubAuditRepo{failAll: true}
	factory := &stubFactory{uow: &stubUow{audit: repo}}
	mail := &stubMailer{}

	consumer := NewAuditConsumerService(pubSub, "AUDIT_RECORD_WRITE", factory, nil, mail, 2, nopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService("AUDIT_RECORD_WRITE", pubSub)
	payload, err := json.Marshal(auditMessage())
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(context.Background(), payload))

	waitFor(t, 3*time.Second, func() bool { return mail.alertCount() >= 1 })
	assert.GreaterOrEqual(t, repo.callCount(), 2)
	assert.Empty(t, repo.snapshot())
}
