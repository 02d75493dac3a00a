package contract

import (
	"context"

	"knowledge-copilot-be/internal/entity"
)

// VisibleSearchQuery is one constrained nearest-neighbor search: similarity
// plus the full eligibility predicate in a single query. There is no
// "search then filter" path on purpose, because unrestricted top-k can
// starve the result set to zero eligible rows when the nearest neighbors
// are all inaccessible.
type VisibleSearchQuery struct {
	Embedding  []float32
	Model      string
	RoleNames  []string
	Attributes map[string]interface{}
	Limit      int
}

type ChunkEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ChunkEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error

	// SearchVisible returns up to Limit chunks ordered by similarity,
	// restricted to approved documents with an active version, a grant for
	// one of the roles, access tags contained in the attributes, and stored
	// vectors produced by the same model as the query embedding.
	SearchVisible(ctx context.Context, query VisibleSearchQuery) ([]*entity.RetrievedChunk, error)

	// CountByModel reports how many stored vectors exist for a model id.
	CountByModel(ctx context.Context, model string) (int64, error)
}
