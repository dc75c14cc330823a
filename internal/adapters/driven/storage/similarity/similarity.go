// Package similarity ranks stored vectors against a query vector.
// It is shared by the index backends that search in process.
package similarity

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// Candidate is a stored entry considered by a search.
// Seq is the insertion sequence and breaks score ties.
type Candidate struct {
	Seq       int64
	Chunk     domain.Chunk
	Embedding []float32
}

// Cosine returns the cosine similarity of a and b.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK scores candidates against query and returns at most k chunks,
// highest score first, equal scores in insertion order.
func TopK(query []float32, candidates []Candidate, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 || len(candidates) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	type scored struct {
		seq   int64
		score float64
		chunk domain.Chunk
	}

	all := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: query has %d dimensions, entry %s has %d",
				domain.ErrDimensionMismatch, len(query), c.Chunk.ID, len(c.Embedding))
		}
		all = append(all, scored{seq: c.Seq, score: Cosine(query, c.Embedding), chunk: c.Chunk})
	}

	slices.SortStableFunc(all, func(a, b scored) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.seq, b.seq)
	})

	n := min(k, len(all))
	out := make([]domain.ScoredChunk, n)
	for i := range n {
		out[i] = domain.ScoredChunk{Chunk: all[i].chunk, Score: all[i].score}
	}
	return out, nil
}

// CheckDimensions verifies every entry has dims dimensions. When dims is 0
// the first entry decides. It returns the resolved dimension.
func CheckDimensions(dims int, entries []domain.IndexEntry) (int, error) {
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return dims, fmt.Errorf("%w: entry %s has no embedding", domain.ErrInvalidInput, e.Chunk.ID)
		}
		if dims == 0 {
			dims = len(e.Embedding)
		}
		if len(e.Embedding) != dims {
			return dims, fmt.Errorf("%w: collection has %d dimensions, entry %s has %d",
				domain.ErrDimensionMismatch, dims, e.Chunk.ID, len(e.Embedding))
		}
	}
	return dims, nil
}
