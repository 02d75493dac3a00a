package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditRecord has no UpdatedAt/DeletedAt on purpose: the table is
// append-only and the core never touches a row after insert.
type AuditRecord struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterId       string         `gorm:"type:varchar(128);not null;index"`
	RoleNames         datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Question          string         `gorm:"type:text;not null"`
	RequestLanguage   string         `gorm:"type:varchar(8)"`
	ResponseLanguage  string         `gorm:"type:varchar(8)"`
	RetrievedChunkIds datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	Answer            string         `gorm:"type:text"`
	Confidence        string         `gorm:"type:varchar(8)"`
	EmbeddingModel    string         `gorm:"type:varchar(128)"`
	LLMModel          string         `gorm:"type:varchar(128)"`
	TraceId           string         `gorm:"type:varchar(64);index"`
	LatencyMs         int64          `gorm:""`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index"`
}

func (AuditRecord) TableName() string {
	return "audit_records"
}
