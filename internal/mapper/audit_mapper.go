package mapper

import (
	"encoding/json"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) ToEntity(r *model.AuditRecord) *entity.AuditRecord {
	if r == nil {
		return nil
	}

	var roleNames []string
	_ = json.Unmarshal(r.RoleNames, &roleNames)

	var chunkIds []uuid.UUID
	_ = json.Unmarshal(r.RetrievedChunkIds, &chunkIds)

	return &entity.AuditRecord{
		Id:                r.Id,
		RequesterId:       r.RequesterId,
		RoleNames:         roleNames,
		Question:          r.Question,
		RequestLanguage:   r.RequestLanguage,
		ResponseLanguage:  r.ResponseLanguage,
		RetrievedChunkIds: chunkIds,
		Answer:            r.Answer,
		Confidence:        r.Confidence,
		EmbeddingModel:    r.EmbeddingModel,
		LLMModel:          r.LLMModel,
		TraceId:           r.TraceId,
		LatencyMs:         r.LatencyMs,
		CreatedAt:         r.CreatedAt,
	}
}

func (m *AuditMapper) ToModel(r *entity.AuditRecord) *model.AuditRecord {
	if r == nil {
		return nil
	}

	roleNames, _ := json.Marshal(r.RoleNames)
	if r.RoleNames == nil {
		roleNames = []byte("[]")
	}

	chunkIds, _ := json.Marshal(r.RetrievedChunkIds)
	if r.RetrievedChunkIds == nil {
		chunkIds = []byte("[]")
	}

	return &model.AuditRecord{
		Id:                r.Id,
		RequesterId:       r.RequesterId,
		RoleNames:         datatypes.JSON(roleNames),
		Question:          r.Question,
		RequestLanguage:   r.RequestLanguage,
		ResponseLanguage:  r.ResponseLanguage,
		RetrievedChunkIds: datatypes.JSON(chunkIds),
		Answer:            r.Answer,
		Confidence:        r.Confidence,
		EmbeddingModel:    r.EmbeddingModel,
		LLMModel:          r.LLMModel,
		TraceId:           r.TraceId,
		LatencyMs:         r.LatencyMs,
		CreatedAt:         r.CreatedAt,
	}
}
