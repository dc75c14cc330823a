// Package chunker provides a fixed-size, overlapping text splitter.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

var _ driven.Chunker = (*Splitter)(nil)

// Splitter splits document content into fixed-size chunks.
// Sizes and offsets are counted in characters (runes), never bytes, so a
// chunk boundary cannot split a multi-byte character.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// New creates a splitter. An invalid configuration is rejected rather than
// corrected: size must be positive and 0 <= overlap < size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrChunkingFailure, s.chunkSize)
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d",
			domain.ErrChunkingFailure, s.chunkSize, s.overlap)
	}

	return s, nil
}

// Size returns the maximum chunk length.
func (s *Splitter) Size() int {
	return s.chunkSize
}

// Overlap returns the overlap between consecutive chunks.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the chunks of doc in source order.
//
// Chunks start at offsets 0, step, 2*step... where step = size - overlap.
// Splitting stops at the first chunk that reaches the end of the text, so
// the tail is never emitted a second time as a short overlap-only chunk.
func (s *Splitter) Split(doc *domain.Document) []domain.Chunk {
	if doc == nil || doc.Content == "" {
		return nil
	}

	runes := []rune(doc.Content)
	total := len(runes)
	step := s.chunkSize - s.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)

	for start, position := 0, 0; start < total; start, position = start+step, position+1 {
		end := min(start+s.chunkSize, total)

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    string(runes[start:end]),
			Position:   position,
			Offset:     start,
		})

		if end == total {
			break
		}
	}

	return chunks
}
