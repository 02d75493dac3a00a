package ranking

import (
	"sort"

	"knowledge-copilot-be/internal/entity"
)

// Ranker orders retrieved chunks deterministically and trims to top-k.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank sorts by similarity descending, breaking ties by most recently
// created active version, then by lower chunk index. Chunks from the same
// document are deduplicated only when their anchors overlap; disjoint
// chunks may all appear since one document can legitimately contribute
// several citations. The output is deterministic and idempotent for an
// unchanged input.
func (r *Ranker) Rank(rows []*entity.RetrievedChunk, topK int) []*entity.RetrievedChunk {
	ordered := make([]*entity.RetrievedChunk, len(rows))
	copy(ordered, rows)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if !a.VersionCreatedAt.Equal(b.VersionCreatedAt) {
			return a.VersionCreatedAt.After(b.VersionCreatedAt)
		}
		return a.ChunkIndex < b.ChunkIndex
	})

	deduped := make([]*entity.RetrievedChunk, 0, len(ordered))
	for _, candidate := range ordered {
		overlapped := false
		for _, kept := range deduped {
			if kept.DocumentId == candidate.DocumentId && anchorsOverlap(kept, candidate) {
				overlapped = true
				break
			}
		}
		if !overlapped {
			deduped = append(deduped, candidate)
		}
	}

	if topK > 0 && len(deduped) > topK {
		deduped = deduped[:topK]
	}
	return deduped
}

func anchorsOverlap(a, b *entity.RetrievedChunk) bool {
	return a.OffsetStart < b.OffsetEnd && b.OffsetStart < a.OffsetEnd
}
