package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentListItemResponse struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Language      string    `json:"language"`
	ActiveVersion string    `json:"active_version,omitempty"`
	SourceURI     string    `json:"source_uri,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
