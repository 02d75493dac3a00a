package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk belongs to exactly one DocumentVersion, ordered by ChunkIndex
// within the version. The anchor (page range / offset range) ties the chunk
// back to its source for citation.
type Chunk struct {
	Id                uuid.UUID
	DocumentVersionId uuid.UUID
	ChunkIndex        int
	Text              string
	Section           string
	PageStart         *int
	PageEnd           *int
	OffsetStart       int
	OffsetEnd         int
	CreatedAt         time.Time
}

// ChunkEmbedding is one fixed-dimensionality vector per chunk, tagged with
// the embedding model that produced it. Vectors from different models must
// never be compared.
type ChunkEmbedding struct {
	Id        uuid.UUID
	ChunkId   uuid.UUID
	Model     string
	Embedding []float32
	CreatedAt time.Time
}

// RetrievedChunk is a chunk joined with its document metadata and the
// similarity score of the current query. This is the row shape that flows
// through ranking, guardrail, and citation assembly.
type RetrievedChunk struct {
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
