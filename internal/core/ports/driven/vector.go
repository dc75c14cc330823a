package driven

import (
	"context"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// VectorIndex is a durable, named collection of chunk vectors.
// An instance is bound to one collection when it is opened.
//
// The first successful write fixes the collection's dimension. Writes or
// queries with any other dimension fail with domain.ErrDimensionMismatch.
// Implementations must be safe for concurrent readers during a write.
type VectorIndex interface {
	// Add appends entries as one atomic batch. It never deduplicates.
	// Either every entry becomes visible to Search or none does.
	Add(ctx context.Context, entries []domain.IndexEntry) error

	// Replace removes every entry whose chunk source equals source and adds
	// entries, in one atomic batch. It returns the number of entries removed.
	Replace(ctx context.Context, source string, entries []domain.IndexEntry) (int, error)

	// Search returns at most k chunks ordered by decreasing cosine similarity.
	// Entries with equal scores keep insertion order.
	// An empty collection returns an empty slice and no error.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)

	// Stats describes the collection.
	Stats(ctx context.Context) (domain.CollectionStats, error)

	// Reset deletes every entry and forgets the collection dimension.
	Reset(ctx context.Context) error

	// Collection returns the bound collection name.
	Collection() string

	// Close releases resources.
	Close() error
}
