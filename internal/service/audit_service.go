package service

import (
	"context"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/specification"
	"knowledge-copilot-be/internal/repository/unitofwork"
)

type IAuditService interface {
	// HasReadAccess reports whether one of the roles may read the audit
	// trail. Audit data is requester questions verbatim; access is gated.
	HasReadAccess(roleNames []string) bool
	List(ctx context.Context, req *dto.ListAuditRecordsRequest) ([]dto.AuditRecordResponse, error)
}

type auditService struct {
	uowFactory unitofwork.RepositoryFactory
	readRoles  map[string]struct{}
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, readRoles []string) IAuditService {
	allowed := make(map[string]struct{}, len(readRoles))
	for _, role := range readRoles {
		allowed[role] = struct{}{}
	}
	return &auditService{
		uowFactory: uowFactory,
		readRoles:  allowed,
	}
}

func (s *auditService) HasReadAccess(roleNames []string) bool {
	for _, role := range roleNames {
		if _, ok := s.readRoles[role]; ok {
			return true
		}
	}
	return false
}

func (s *auditService) List(ctx context.Context, req *dto.ListAuditRecordsRequest) ([]dto.AuditRecordResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	}
	if req.RequesterId != "" {
		specs = append([]specification.Specification{specification.ByRequesterId{RequesterId: req.RequesterId}}, specs...)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.AuditRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AuditRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toAuditRecordResponse(record))
	}
	return items, nil
}

func toAuditRecordResponse(record *entity.AuditRecord) dto.AuditRecordResponse {
	return dto.AuditRecordResponse{
		Id:                record.Id,
		RequesterId:       record.RequesterId,
		RoleNames:         record.RoleNames,
		Question:          record.Question,
		ResponseLanguage:  record.ResponseLanguage,
		RetrievedChunkIds: record.RetrievedChunkIds,
		Answer:            record.Answer,
		Confidence:        record.Confidence,
		EmbeddingModel:    record.EmbeddingModel,
		LLMModel:          record.LLMModel,
		TraceId:           record.TraceId,
		LatencyMs:         record.LatencyMs,
		CreatedAt:         record.CreatedAt,
	}
}
