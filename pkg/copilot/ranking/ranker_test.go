package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"knowledge-copilot-be/internal/entity"
)

var baseTime = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func chunk(docId uuid.UUID, idx, start, end int, similarity float64, versionAge time.Duration) *entity.RetrievedChunk {
	return &entity.RetrievedChunk{
		ChunkId:          uuid.New(),
		DocumentId:       docId,
		ChunkIndex:       idx,
		OffsetStart:      start,
		OffsetEnd:        end,
		Similarity:       similarity,
		VersionCreatedAt: baseTime.Add(-versionAge),
	}
}

func TestRankOrdering(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()

	low := chunk(docA, 0, 0, 100, 0.55, 0)
	high := chunk(docB, 0, 0, 100, 0.91, 0)
	mid := chunk(docA, 3, 200, 300, 0.70, 0)

	got := NewRanker().Rank([]*entity.RetrievedChunk{low, high, mid}, 10)

	if len(got) != 3 {
		t.Fatalf("Rank() returned %d rows, want 3", len(got))
	}
	if got[0] != high || got[1] != mid || got[2] != low {
		t.Error("rows are not in descending similarity order")
	}
}

func TestRankTiebreaks(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()

	t.Run("newer version wins equal similarity", func(t *testing.T) {
		stale := chunk(docA, 0, 0, 100, 0.80, 48*time.Hour)
		fresh := chunk(docB, 0, 0, 100, 0.80, 0)

		got := NewRanker().Rank([]*entity.RetrievedChunk{stale, fresh}, 10)
		if got[0] != fresh {
			t.Error("more recent version should rank first on a score tie")
		}
	})

	t.Run("lower chunk index wins equal similarity and version", func(t *testing.T) {
		later := chunk(docA, 7, 700, 800, 0.80, 0)
		earlier := chunk(docA, 2, 200, 300, 0.80, 0)

		got := NewRanker().Rank([]*entity.RetrievedChunk{later, earlier}, 10)
		if got[0] != earlier {
			t.Error("earlier chunk should rank first on a full tie")
		}
	})
}

func TestRankDeduplicatesOverlappingAnchors(t *testing.T) {
	docA := uuid.New()
	docB := uuid.New()

	kept := chunk(docA, 0, 0, 120, 0.90, 0)
	overlapping := chunk(docA, 1, 100, 220, 0.85, 0)
	disjoint := chunk(docA, 5, 500, 620, 0.80, 0)
	otherDoc := chunk(docB, 0, 0, 120, 0.75, 0)

	got := NewRanker().Rank([]*entity.RetrievedChunk{kept, overlapping, disjoint, otherDoc}, 10)

	if len(got) != 3 {
		t.Fatalf("Rank() returned %d rows, want 3", len(got))
	}
	for _, row := range got {
		if row == overlapping {
			t.Fatal("overlapping chunk from the same document survived dedupe")
		}
	}
	// Overlap only suppresses within a document. The same span in another
	// document is an independent piece of evidence.
	if got[2] != otherDoc {
		t.Error("same anchor in a different document should be kept")
	}
}

func TestRankTopKAndIdempotence(t *testing.T) {
	docA := uuid.New()
	rows := []*entity.RetrievedChunk{
		chunk(docA, 2, 200, 300, 0.7, 0),
		chunk(docA, 0, 0, 100, 0.9, 0),
		chunk(docA, 1, 100, 200, 0.8, 0),
	}

	r := NewRanker()
	first := r.Rank(rows, 2)
	if len(first) != 2 {
		t.Fatalf("Rank() returned %d rows, want top 2", len(first))
	}

	second := r.Rank(first, 2)
	if len(second) != len(first) {
		t.Fatal("re-ranking an already ranked slice changed its length")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("re-ranking an already ranked slice changed its order")
		}
	}

	// The input slice itself must stay untouched.
	if rows[0].Similarity != 0.7 || rows[1].Similarity != 0.9 {
		t.Error("Rank() reordered its input slice")
	}
}
