package copiloterr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error taxonomy for the ask pipeline.
//
// Emptiness after permission filtering is NOT an error: an empty candidate
// set is a valid guardrail input and is represented by an empty slice.
var (
	// ErrRetrievalUnavailable means the embedding provider or vector store
	// could not be reached after the retry budget. Retryable by the caller.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationUnavailable means the LLM provider failed after the retry
	// budget. Retryable by the caller.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrModelMismatch means the query embedding model differs from the
	// stored embedding model. Fatal to the request: comparing vectors from
	// different models is undefined.
	ErrModelMismatch = errors.New("embedding model mismatch")
)

// DataIntegrityError flags a chunk whose anchor violates its invariants
// (offset_start <= offset_end, anchor within source bounds). The offending
// chunk is dropped and logged; the request proceeds with the rest.
type DataIntegrityError struct {
	ChunkId     uuid.UUID
	OffsetStart int
	OffsetEnd   int
	TextLen     int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("chunk %s has inconsistent anchor [%d:%d] for text length %d",
		e.ChunkId, e.OffsetStart, e.OffsetEnd, e.TextLen)
}

// IsTransient reports whether an error maps to an operational refusal
// rather than a knowledge refusal.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRetrievalUnavailable) || errors.Is(err, ErrGenerationUnavailable)
}
