package implementation

import (
	"context"
	"encoding/json"
	"time"

	"knowledge-copilot-be/internal/constant"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/mapper"
	"knowledge-copilot-be/internal/model"
	"knowledge-copilot-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ChunkEmbedding) error {
	m := r.mapper.EmbeddingToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.EmbeddingToEntity(m)
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.EmbeddingToModel(e)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.EmbeddingToEntity(m)
	}
	return nil
}

// SearchVisible runs the combined permission+similarity query.
//
// The eligibility predicate is pushed into the candidate selection itself:
// approved document, active version, role grant, access-tag containment,
// and embedding model equality all constrain the ANN scan. Cosine distance
// in pgvector is 1 - cosine_similarity, so similarity = 1 - (a <=> b).
func (r *ChunkEmbeddingRepositoryImpl) SearchVisible(ctx context.Context, query contract.VisibleSearchQuery) ([]*entity.RetrievedChunk, error) {
	if query.Limit <= 0 {
		query.Limit = 5
	}
	if len(query.RoleNames) == 0 {
		// No roles means no grants can match. Valid emptiness, not an error.
		return []*entity.RetrievedChunk{}, nil
	}

	attrs := query.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}

	queryVector := pgvector.NewVector(query.Embedding)

	type row struct {
		ChunkId           uuid.UUID
		Text              string
		Section           string
		ChunkIndex        int
		PageStart         *int
		PageEnd           *int
		OffsetStart       int
		OffsetEnd         int
		DocumentId        uuid.UUID
		DocumentTitle     string
		DocumentLanguage  string
		DocumentVersionId uuid.UUID
		DocumentVersion   string
		VersionCreatedAt  time.Time
		SourceURI         string
		Similarity        float64
	}
	var rows []row

	err = r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select(`chunks.id AS chunk_id,
			chunks.text AS text,
			chunks.section AS section,
			chunks.chunk_index AS chunk_index,
			chunks.page_start AS page_start,
			chunks.page_end AS page_end,
			chunks.offset_start AS offset_start,
			chunks.offset_end AS offset_end,
			documents.id AS document_id,
			documents.title AS document_title,
			documents.language AS document_language,
			document_versions.id AS document_version_id,
			document_versions.version AS document_version,
			document_versions.created_at AS version_created_at,
			document_versions.source_uri AS source_uri,
			1 - (chunk_embeddings.embedding <=> ?) AS similarity`, queryVector).
		Joins("JOIN chunks ON chunks.id = chunk_embeddings.chunk_id").
		Joins("JOIN document_versions ON document_versions.id = chunks.document_version_id").
		Joins("JOIN documents ON documents.id = document_versions.document_id").
		Where("chunk_embeddings.model = ?", query.Model).
		Where("documents.status = ?", constant.DocumentStatusApproved).
		Where("document_versions.is_active = true").
		Where("documents.access_tags <@ ?::jsonb", string(attrsJSON)).
		Where(`EXISTS (
			SELECT 1 FROM access_grants
			JOIN roles ON roles.id = access_grants.role_id
			WHERE access_grants.document_id = documents.id
			  AND roles.name IN ?)`, query.RoleNames).
		Order(gorm.Expr("chunk_embeddings.embedding <=> ?", queryVector)).
		Limit(query.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*entity.RetrievedChunk, len(rows))
	for i, res := range rows {
		results[i] = &entity.RetrievedChunk{
			ChunkId:           res.ChunkId,
			Text:              res.Text,
			Section:           res.Section,
			ChunkIndex:        res.ChunkIndex,
			PageStart:         res.PageStart,
			PageEnd:           res.PageEnd,
			OffsetStart:       res.OffsetStart,
			OffsetEnd:         res.OffsetEnd,
			DocumentId:        res.DocumentId,
			DocumentTitle:     res.DocumentTitle,
			DocumentLanguage:  res.DocumentLanguage,
			DocumentVersionId: res.DocumentVersionId,
			DocumentVersion:   res.DocumentVersion,
			VersionCreatedAt:  res.VersionCreatedAt,
			SourceURI:         res.SourceURI,
			Similarity:        res.Similarity,
		}
	}
	return results, nil
}

func (r *ChunkEmbeddingRepositoryImpl) CountByModel(ctx context.Context, embeddingModel string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Where("model = ?", embeddingModel).
		Count(&count).Error
	return count, err
}
