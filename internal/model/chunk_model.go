package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Chunk struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentVersionId uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkIndex        int       `gorm:"not null;default:0"` // 0-based order within the version
	Text              string    `gorm:"type:text;not null"`
	Section           string    `gorm:"type:text"`
	PageStart         *int      `gorm:""`
	PageEnd           *int      `gorm:""`
	OffsetStart       int       `gorm:"not null;default:0"`
	OffsetEnd         int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`

	DocumentVersion *DocumentVersion `gorm:"foreignKey:DocumentVersionId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Chunk) TableName() string {
	return "chunks"
}

type ChunkEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Model     string          `gorm:"type:varchar(128);not null;index"` // embedding model identifier, matched at query time
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`

	Chunk *Chunk `gorm:"foreignKey:ChunkId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
