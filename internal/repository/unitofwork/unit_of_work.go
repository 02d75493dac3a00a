package unitofwork

import (
	"context"

	"knowledge-copilot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository
	RoleRepository() contract.RoleRepository
	AccessGrantRepository() contract.AccessGrantRepository
	AuditRepository() contract.AuditRepository
}
