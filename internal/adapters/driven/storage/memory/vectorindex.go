package memory

import (
	"context"
	"sync"

	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/similarity"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// It is not durable; contents are lost when the process exits.
type VectorIndex struct {
	mu         sync.RWMutex
	collection string
	dims       int
	nextSeq    int64
	entries    []similarity.Candidate
}

// NewVectorIndex creates an empty in-memory index for collection.
func NewVectorIndex(collection string) *VectorIndex {
	return &VectorIndex{collection: collection}
}

// Collection returns the bound collection name.
func (v *VectorIndex) Collection() string {
	return v.collection
}

// Add appends entries. Validation happens before any entry is stored.
func (v *VectorIndex) Add(_ context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	dims, err := similarity.CheckDimensions(v.dims, entries)
	if err != nil {
		return err
	}
	v.dims = dims
	v.appendLocked(entries)
	return nil
}

// Replace removes entries for source and appends the new entries.
func (v *VectorIndex) Replace(_ context.Context, source string, entries []domain.IndexEntry) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	kept := make([]similarity.Candidate, 0, len(v.entries))
	for _, c := range v.entries {
		if c.Chunk.Source != source {
			kept = append(kept, c)
		}
	}
	removed := len(v.entries) - len(kept)

	dims := v.dims
	if len(kept) == 0 {
		dims = 0
	}
	dims, err := similarity.CheckDimensions(dims, entries)
	if err != nil {
		return 0, err
	}

	v.entries = kept
	v.dims = dims
	v.appendLocked(entries)
	return removed, nil
}

func (v *VectorIndex) appendLocked(entries []domain.IndexEntry) {
	for _, e := range entries {
		v.nextSeq++
		emb := make([]float32, len(e.Embedding))
		copy(emb, e.Embedding)
		v.entries = append(v.entries, similarity.Candidate{Seq: v.nextSeq, Chunk: e.Chunk, Embedding: emb})
	}
}

// Search returns the k most similar chunks.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return similarity.TopK(query, v.entries, k)
}

// Count returns the number of entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Stats describes the collection.
func (v *VectorIndex) Stats(_ context.Context) (domain.CollectionStats, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	stats := domain.CollectionStats{
		Collection: v.collection,
		Entries:    len(v.entries),
		Dimensions: v.dims,
	}
	seen := make(map[string]bool)
	for _, c := range v.entries {
		if !seen[c.Chunk.Source] {
			seen[c.Chunk.Source] = true
			stats.Sources = append(stats.Sources, c.Chunk.Source)
		}
	}
	return stats, nil
}

// Reset removes every entry.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = nil
	v.dims = 0
	return nil
}

// Close is a no-op for the memory index.
func (v *VectorIndex) Close() error {
	return nil
}
