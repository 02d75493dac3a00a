package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/contract"
	"knowledge-copilot-be/pkg/copilot/copiloterr"
	"knowledge-copilot-be/pkg/embedding"
)

const corpusModel = "bge-m3"

type fakeEmbedder struct {
	model string
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (*embedding.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.Result{Vector: []float32{0.1, 0.2, 0.3}, Model: f.model}, nil
}

func (f *fakeEmbedder) ModelId() string { return f.model }

// fakeStore replays a row fixture per search call and records the limits
// the retriever asked for.
type fakeStore struct {
	rows   [][]*entity.RetrievedChunk
	err    error
	limits []int
}

func (f *fakeStore) Create(ctx context.Context, e *entity.ChunkEmbedding) error       { return nil }
func (f *fakeStore) CreateBulk(ctx context.Context, e []*entity.ChunkEmbedding) error { return nil }
func (f *fakeStore) CountByModel(ctx context.Context, model string) (int64, error)    { return 0, nil }

func (f *fakeStore) SearchVisible(ctx context.Context, query contract.VisibleSearchQuery) ([]*entity.RetrievedChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.limits = append(f.limits, query.Limit)
	call := len(f.limits) - 1
	if call >= len(f.rows) {
		call = len(f.rows) - 1
	}
	return f.rows[call], nil
}

func validRow(similarity float64) *entity.RetrievedChunk {
	return &entity.RetrievedChunk{
		ChunkId:     uuid.New(),
		Text:        "Retail accounts may be opened for residents aged 18 or above.",
		OffsetStart: 0,
		OffsetEnd:   40,
		DocumentId:  uuid.New(),
		Similarity:  similarity,
	}
}

func corruptRow() *entity.RetrievedChunk {
	row := validRow(0.9)
	row.OffsetEnd = 5000
	return row
}

func employee() *entity.Requester {
	return &entity.Requester{
		Id:         "user-1",
		RoleNames:  []string{"employee"},
		Attributes: map[string]interface{}{"department": "retail"},
	}
}

func TestRetrieveEmptyRolesShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{model: corpusModel}
	store := &fakeStore{rows: [][]*entity.RetrievedChunk{{validRow(0.9)}}}
	r := NewRetriever(embedder, store, corpusModel, time.Second, 0, 3)

	for _, requester := range []*entity.Requester{nil, {Id: "user-2", RoleNames: []string{}}} {
		rows, dropped, err := r.Retrieve(context.Background(), "query", requester, 5)
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if rows == nil || len(rows) != 0 {
			t.Error("want an empty, non-nil candidate set for a role-less requester")
		}
		if len(dropped) != 0 {
			t.Error("no rows should be dropped without a search")
		}
	}
	if embedder.calls != 0 || len(store.limits) != 0 {
		t.Error("embedder and store must not be touched for a role-less requester")
	}
}

func TestRetrieveModelMismatch(t *testing.T) {
	embedder := &fakeEmbedder{model: "some-other-model"}
	store := &fakeStore{rows: [][]*entity.RetrievedChunk{{}}}
	r := NewRetriever(embedder, store, corpusModel, time.Second, 0, 3)

	_, _, err := r.Retrieve(context.Background(), "query", employee(), 5)
	if !errors.Is(err, copiloterr.ErrModelMismatch) {
		t.Fatalf("Retrieve() error = %v, want ErrModelMismatch", err)
	}
	if len(store.limits) != 0 {
		t.Error("search must not run when the query model differs from the corpus")
	}
}

func TestRetrieveExpandsWindowOnAnchorDrops(t *testing.T) {
	// First window of 2 holds one corrupt row; the doubled window recovers
	// enough valid rows.
	firstWindow := []*entity.RetrievedChunk{validRow(0.9), corruptRow()}
	secondWindow := []*entity.RetrievedChunk{validRow(0.9), corruptRow(), validRow(0.8), validRow(0.7)}

	embedder := &fakeEmbedder{model: corpusModel}
	store := &fakeStore{rows: [][]*entity.RetrievedChunk{firstWindow, secondWindow}}
	r := NewRetriever(embedder, store, corpusModel, time.Second, 0, 3)

	rows, dropped, err := r.Retrieve(context.Background(), "query", employee(), 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Retrieve() returned %d rows, want 3 valid rows from the expanded window", len(rows))
	}
	if len(dropped) != 1 {
		t.Errorf("Retrieve() reported %d dropped rows, want 1", len(dropped))
	}
	if len(store.limits) != 2 || store.limits[0] != 2 || store.limits[1] != 4 {
		t.Errorf("search limits = %v, want [2 4]", store.limits)
	}
}

func TestRetrieveStopsExpandingWhenCorpusExhausted(t *testing.T) {
	// One valid row total. The short result signals there is nothing more to
	// fetch, so no second search happens.
	embedder := &fakeEmbedder{model: corpusModel}
	store := &fakeStore{rows: [][]*entity.RetrievedChunk{{validRow(0.9)}}}
	r := NewRetriever(embedder, store, corpusModel, time.Second, 0, 3)

	rows, _, err := r.Retrieve(context.Background(), "query", employee(), 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Retrieve() returned %d rows, want 1", len(rows))
	}
	if len(store.limits) != 1 {
		t.Errorf("store searched %d times, want 1", len(store.limits))
	}
}

func TestRetrieveEmbeddingFailureAfterRetries(t *testing.T) {
	embedder := &fakeEmbedder{model: corpusModel, err: errors.New("connection refused")}
	store := &fakeStore{rows: [][]*entity.RetrievedChunk{{}}}
	r := NewRetriever(embedder, store, corpusModel, time.Second, 2, 3)

	_, _, err := r.Retrieve(context.Background(), "query", employee(), 5)
	if !errors.Is(err, copiloterr.ErrRetrievalUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrRetrievalUnavailable", err)
	}
	if embedder.calls != 3 {
		t.Errorf("embedder called %d times, want 3 (initial + 2 retries)", embedder.calls)
	}
}

func TestRetrieveSearchFailure(t *testing.T) {
	embedder := &fakeEmbedder{model: corpusModel}
	store := &fakeStore{err: errors.New("database unavailable")}
	r := NewRetriever(embedder, store, corpusModel, time.Second, 0, 3)

	_, _, err := r.Retrieve(context.Background(), "query", employee(), 5)
	if !errors.Is(err, copiloterr.ErrRetrievalUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrRetrievalUnavailable", err)
	}
}
