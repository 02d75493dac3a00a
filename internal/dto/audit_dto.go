package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListAuditRecordsRequest struct {
	RequesterId string `query:"requester_id"`
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=200"`
}

type AuditRecordResponse struct {
	Id                uuid.UUID   `json:"id"`
	RequesterId       string      `json:"requester_id"`
	RoleNames         []string    `json:"role_names"`
	Question          string      `json:"question"`
	ResponseLanguage  string      `json:"response_language"`
	RetrievedChunkIds []uuid.UUID `json:"retrieved_chunk_ids"`
	Answer            string      `json:"answer"`
	Confidence        string      `json:"confidence"`
	EmbeddingModel    string      `json:"embedding_model"`
	LLMModel          string      `json:"llm_model"`
	TraceId           string      `json:"trace_id"`
	LatencyMs         int64       `json:"latency_ms"`
	CreatedAt         time.Time   `json:"created_at"`
}

// PublishAuditRecordMessage is the payload carried on the in-process audit
// topic between the ask path and the audit writer. Mirrors the audit record
// plus the refusal flag the live feed needs.
type PublishAuditRecordMessage struct {
	Id                uuid.UUID   `json:"id"`
	RequesterId       string      `json:"requester_id"`
	RoleNames         []string    `json:"role_names"`
	Question          string      `json:"question"`
	RequestLanguage   string      `json:"request_language"`
	ResponseLanguage  string      `json:"response_language"`
	RetrievedChunkIds []uuid.UUID `json:"retrieved_chunk_ids"`
	Answer            string      `json:"answer"`
	Confidence        string      `json:"confidence"`
	EmbeddingModel    string      `json:"embedding_model"`
	LLMModel          string      `json:"llm_model"`
	TraceId           string      `json:"trace_id"`
	LatencyMs         int64       `json:"latency_ms"`
	Refused           bool        `json:"refused"`
	CreatedAt         time.Time   `json:"created_at"`
}

// AuditFeedEvent is pushed over the compliance live feed.
type AuditFeedEvent struct {
	TraceId     string    `json:"trace_id"`
	RequesterId string    `json:"requester_id"`
	Question    string    `json:"question"`
	Confidence  string    `json:"confidence"`
	Refused     bool      `json:"refused"`
	LatencyMs   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
