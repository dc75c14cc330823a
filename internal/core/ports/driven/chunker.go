package driven

import "github.com/Karagwa/DocChatter/internal/core/domain"

// Chunker splits a document into ordered, overlapping chunks.
// Implementations are pure: the same document always yields the same
// contents and offsets.
type Chunker interface {
	// Split returns the chunks of doc in source order.
	// Empty content yields no chunks.
	Split(doc *domain.Document) []domain.Chunk

	// Size returns the maximum chunk length in characters.
	Size() int

	// Overlap returns the characters shared by consecutive chunks.
	Overlap() int
}
