package domain

import (
	"fmt"
	"time"
)

// Document is the raw text of one uploaded file.
// It lives only for the duration of a single ingestion call.
type Document struct {
	// ID is the unique identifier for this ingestion of the document.
	ID string

	// Source identifies where the text came from (the file base name).
	// Re-ingestion policies match on this value.
	Source string

	// Path is the location the document was read from.
	Path string

	// Content is the full extracted text.
	Content string

	// Encoding is the character encoding the content was decoded from.
	Encoding string

	// LoadedAt is when the document was read.
	LoadedAt time.Time
}

// Chunk is a contiguous substring of a Document.
// Chunks are produced by the chunker and never mutated afterwards.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the Document ingestion that produced the chunk.
	DocumentID string

	// Source is copied from the parent Document.
	Source string

	// Content is the text of the chunk.
	Content string

	// Position is the ordinal position within the document (0-based).
	Position int

	// Offset is the start offset in the source text, counted in characters.
	Offset int
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return len([]rune(c.Content))
}

// End returns the offset one past the last character of the chunk.
func (c Chunk) End() int {
	return c.Offset + c.Len()
}

// IndexEntry pairs a chunk with its embedding vector.
type IndexEntry struct {
	Chunk     Chunk
	Embedding []float32
}

// ScoredChunk is a chunk returned by a similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity between the query and the chunk.
	Score float64
}

// IngestReport summarises a successful ingestion.
type IngestReport struct {
	DocumentID string
	Source     string
	Collection string
	Chunks     int
	Dimensions int

	// Replaced is the number of prior entries removed for the same source.
	Replaced int
}

// Status returns the human-readable message for a successful ingestion.
func (r IngestReport) Status() string {
	return fmt.Sprintf("Processed %s: %d chunks indexed into collection %s", r.Source, r.Chunks, r.Collection)
}

// CollectionStats describes the contents of a vector index collection.
type CollectionStats struct {
	Collection string
	Entries    int
	Dimensions int
	Sources    []string
}
