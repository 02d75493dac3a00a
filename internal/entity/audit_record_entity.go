package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is append-only: written exactly once per request after the
// response is finalized (or after a terminal failure), never updated or
// deleted.
type AuditRecord struct {
	Id                uuid.UUID
	RequesterId       string
	RoleNames         []string
	Question          string
	RequestLanguage   string
	ResponseLanguage  string
	RetrievedChunkIds []uuid.UUID
	Answer            string
	Confidence        string
	EmbeddingModel    string
	LLMModel          string
	TraceId           string
	LatencyMs         int64
	CreatedAt         time.Time
}
