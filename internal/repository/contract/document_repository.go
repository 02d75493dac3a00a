package contract

import (
	"context"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

// VisibleDocument is a document joined with its active version, as exposed
// by the read-only listing endpoint.
type VisibleDocument struct {
	Document      *entity.Document
	ActiveVersion *entity.DocumentVersion
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	CreateVersion(ctx context.Context, version *entity.DocumentVersion) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindVisible lists approved documents the requester can see: at least
	// one access grant for one of the roles AND access tags satisfied by the
	// attributes. Same eligibility predicate as retrieval, minus similarity.
	FindVisible(ctx context.Context, roleNames []string, attributes map[string]interface{}, limit, offset int) ([]*VisibleDocument, error)

	// FindActiveVersion returns the single active version of a document, or
	// nil when the document has none.
	FindActiveVersion(ctx context.Context, documentId uuid.UUID) (*entity.DocumentVersion, error)
}
