package cli

import (
	"errors"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// hints pairs an error kind with the advice shown under the error.
// Order matters: the first matching kind wins.
var hints = []struct {
	kind error
	hint string
}{
	{domain.ErrNoDocumentIndexed, "No document has been processed yet. Run 'docchatter ingest <file>' first."},
	{domain.ErrEmptyQuestion, "Ask a non-empty question."},
	{domain.ErrUnsupportedFormat, "Supported formats: .txt .md .html .pdf .docx and other plain text files."},
	{domain.ErrEmptyDocument, "The document contains no extractable text."},
	{domain.ErrDimensionMismatch, "The collection was built with a different embedding model. " +
		"Run 'docchatter index reset' or choose another index.collection."},
	{domain.ErrChunkingFailure, "Check chunking.size and chunking.overlap with 'docchatter settings show'."},
	{domain.ErrEmbeddingFailure, "The embedding model is unavailable. Run 'docchatter settings check'."},
	{domain.ErrGenerationFailure, "The language model call failed. Run 'docchatter settings check'."},
	{domain.ErrIndexWriteFailure, "The vector index could not be written. Check index.path or index.dsn."},
	{domain.ErrIndexReadFailure, "The vector index could not be read. Check index.path or index.dsn."},
	{domain.ErrNotFound, "Check the file path."},
}

// Hint returns advice for a failed command, or "" when none applies.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.kind) {
			return h.hint
		}
	}
	return ""
}
