package service

import (
	"context"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/memory"
	"knowledge-copilot-be/internal/repository/unitofwork"
)

type IDocumentService interface {
	ListVisible(ctx context.Context, requester *entity.Requester, limit, offset int) ([]dto.DocumentListItemResponse, error)
}

// documentService exposes the read-only document listing. The same
// eligibility predicate as retrieval applies: a requester only ever sees
// approved documents they hold a grant and matching attributes for.
type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.VisibilityCache
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		cache:      memory.NewVisibilityCache(),
	}
}

func (s *documentService) ListVisible(ctx context.Context, requester *entity.Requester, limit, offset int) ([]dto.DocumentListItemResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	// No roles means no visible documents. Same emptiness rule as retrieval.
	if requester == nil || len(requester.RoleNames) == 0 {
		return []dto.DocumentListItemResponse{}, nil
	}

	// The cache key is the access scope plus the page, never the requester
	// id: two requesters with identical scope share an entry.
	key := memory.ScopeKey(requester.RoleNames, requester.Attributes, limit, offset)
	visible, found := s.cache.Get(key)
	if !found {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		var err error
		visible, err = uow.DocumentRepository().FindVisible(ctx, requester.RoleNames, requester.Attributes, limit, offset)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, visible)
	}

	items := make([]dto.DocumentListItemResponse, 0, len(visible))
	for _, v := range visible {
		item := dto.DocumentListItemResponse{
			Id:        v.Document.Id,
			Title:     v.Document.Title,
			Language:  v.Document.Language,
			CreatedAt: v.Document.CreatedAt,
		}
		if v.ActiveVersion != nil {
			item.ActiveVersion = v.ActiveVersion.Version
			item.SourceURI = v.ActiveVersion.SourceURI
		}
		items = append(items, item)
	}
	return items, nil
}
