package mapper

import (
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}
	return &entity.Chunk{
		Id:                c.Id,
		DocumentVersionId: c.DocumentVersionId,
		ChunkIndex:        c.ChunkIndex,
		Text:              c.Text,
		Section:           c.Section,
		PageStart:         c.PageStart,
		PageEnd:           c.PageEnd,
		OffsetStart:       c.OffsetStart,
		OffsetEnd:         c.OffsetEnd,
		CreatedAt:         c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}
	return &model.Chunk{
		Id:                c.Id,
		DocumentVersionId: c.DocumentVersionId,
		ChunkIndex:        c.ChunkIndex,
		Text:              c.Text,
		Section:           c.Section,
		PageStart:         c.PageStart,
		PageEnd:           c.PageEnd,
		OffsetStart:       c.OffsetStart,
		OffsetEnd:         c.OffsetEnd,
		CreatedAt:         c.CreatedAt,
	}
}

func (m *ChunkMapper) EmbeddingToEntity(e *model.ChunkEmbedding) *entity.ChunkEmbedding {
	if e == nil {
		return nil
	}
	return &entity.ChunkEmbedding{
		Id:        e.Id,
		ChunkId:   e.ChunkId,
		Model:     e.Model,
		Embedding: e.Embedding.Slice(),
		CreatedAt: e.CreatedAt,
	}
}

func (m *ChunkMapper) EmbeddingToModel(e *entity.ChunkEmbedding) *model.ChunkEmbedding {
	if e == nil {
		return nil
	}
	return &model.ChunkEmbedding{
		Id:        e.Id,
		ChunkId:   e.ChunkId,
		Model:     e.Model,
		Embedding: pgvector.NewVector(e.Embedding),
		CreatedAt: e.CreatedAt,
	}
}
