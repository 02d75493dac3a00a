package retrieval

import (
	"context"
	"fmt"
	"time"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/contract"
	"knowledge-copilot-be/pkg/copilot/citation"
	"knowledge-copilot-be/pkg/copilot/copiloterr"
	"knowledge-copilot-be/pkg/embedding"
)

// Retriever runs the retrieval stage: query embedding, the model-identity
// guard, and the access-constrained similarity search with window expansion
// when anchor validation thins the candidate set.
type Retriever struct {
	embedder      embedding.Provider
	store         contract.ChunkEmbeddingRepository
	corpusModel   string
	timeout       time.Duration
	maxRetries    int
	maxExpansions int
}

func NewRetriever(embedder embedding.Provider, store contract.ChunkEmbeddingRepository, corpusModel string, timeout time.Duration, maxRetries, maxExpansions int) *Retriever {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxExpansions <= 0 {
		maxExpansions = 3
	}
	return &Retriever{
		embedder:      embedder,
		store:         store,
		corpusModel:   corpusModel,
		timeout:       timeout,
		maxRetries:    maxRetries,
		maxExpansions: maxExpansions,
	}
}

// Retrieve returns up to topK visible chunks for the folded query, along
// with any rows dropped for anchor violations. A requester with no roles
// gets an empty candidate set without touching the embedder or the store:
// emptiness is a valid guardrail input, not an error.
//
// Embedding and search failures map to ErrRetrievalUnavailable after the
// retry budget. A query model that differs from the corpus model is
// ErrModelMismatch: similarity across model spaces is undefined, so the
// request must fail rather than silently return garbage neighbors.
func (r *Retriever) Retrieve(ctx context.Context, foldedQuery string, requester *entity.Requester, topK int) ([]*entity.RetrievedChunk, []*copiloterr.DataIntegrityError, error) {
	if requester == nil || len(requester.RoleNames) == 0 {
		return []*entity.RetrievedChunk{}, nil, nil
	}

	if r.embedder.ModelId() != r.corpusModel {
		return nil, nil, fmt.Errorf("%w: query model %q, corpus model %q",
			copiloterr.ErrModelMismatch, r.embedder.ModelId(), r.corpusModel)
	}

	result, err := r.embedWithRetry(ctx, foldedQuery)
	if err != nil {
		return nil, nil, err
	}
	if result.Model != r.corpusModel {
		return nil, nil, fmt.Errorf("%w: provider returned model %q, corpus model %q",
			copiloterr.ErrModelMismatch, result.Model, r.corpusModel)
	}

	var valid []*entity.RetrievedChunk
	var dropped []*copiloterr.DataIntegrityError
	window := topK
	for attempt := 0; attempt <= r.maxExpansions; attempt++ {
		rows, searchErr := r.store.SearchVisible(ctx, contract.VisibleSearchQuery{
			Embedding:  result.Vector,
			Model:      r.corpusModel,
			RoleNames:  requester.RoleNames,
			Attributes: requester.Attributes,
			Limit:      window,
		})
		if searchErr != nil {
			return nil, nil, fmt.Errorf("%w: %v", copiloterr.ErrRetrievalUnavailable, searchErr)
		}

		valid = valid[:0]
		dropped = dropped[:0]
		for _, row := range rows {
			if integrityErr := citation.ValidateAnchor(row); integrityErr != nil {
				dropped = append(dropped, integrityErr)
				continue
			}
			valid = append(valid, row)
		}

		// Expand only when corrupt rows pushed us under topK AND the window
		// was full; a short result means the eligible corpus is exhausted.
		if len(valid) >= topK || len(rows) < window {
			break
		}
		window *= 2
	}
	return valid, dropped, nil
}

func (r *Retriever) embedWithRetry(ctx context.Context, text string) (*embedding.Result, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 300 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", copiloterr.ErrRetrievalUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		result, err := r.embedder.Embed(callCtx, text)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", copiloterr.ErrRetrievalUnavailable, lastErr)
}
