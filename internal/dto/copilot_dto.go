package dto

import (
	"github.com/google/uuid"
)

// AskRequest is the public ask contract. Identity is NOT part of the body:
// it comes from the verified token via the identity middleware.
type AskRequest struct {
	Question string           `json:"question" validate:"required,min=1"`
	Language string           `json:"language" validate:"omitempty,oneof=en ar auto"`
	TopK     int              `json:"top_k" validate:"omitempty,min=1,max=20"`
	History  []HistoryTurnDTO `json:"history" validate:"omitempty,dive"`
}

type HistoryTurnDTO struct {
	Role string `json:"role" validate:"required,oneof=user assistant"`
	Text string `json:"text" validate:"required"`
}

type AskResponse struct {
	Language      string        `json:"language"`
	Answer        string        `json:"answer"`
	Confidence    string        `json:"confidence"`
	Citations     []CitationDTO `json:"citations"`
	MissingInfo   *string       `json:"missing_info"`
	SafeNextSteps []string      `json:"safe_next_steps"`
}

// CitationDTO is derived fresh per response, never persisted. The quote is
// always a verbatim substring of the source chunk's stored text.
type CitationDTO struct {
	DocTitle        string    `json:"doc_title"`
	DocId           uuid.UUID `json:"doc_id"`
	DocumentVersion string    `json:"document_version"`
	PageNumber      *int      `json:"page_number,omitempty"`
	StartOffset     *int      `json:"start_offset,omitempty"`
	EndOffset       *int      `json:"end_offset,omitempty"`
	Quote           string    `json:"quote"`
	SourceURI       string    `json:"source_uri"`
}
