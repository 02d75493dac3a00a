package contract

import (
	"context"

	"knowledge-copilot-be/internal/entity"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	FindByName(ctx context.Context, name string) (*entity.Role, error)
	FindAll(ctx context.Context) ([]*entity.Role, error)
}

type AccessGrantRepository interface {
	Create(ctx context.Context, grant *entity.AccessGrant) error
	FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.AccessGrant, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}
