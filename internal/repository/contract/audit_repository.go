package contract

import (
	"context"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/specification"
)

// AuditRepository is append-only: there is deliberately no Update or Delete.
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
