package driven

import (
	"context"

	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// DocumentLoader extracts text from a file on disk.
// Each loader handles a set of file extensions (e.g. ".pdf", ".html").
type DocumentLoader interface {
	// Extensions returns the lower-case extensions this loader handles,
	// including the leading dot.
	Extensions() []string

	// Load reads the file at path into a Document.
	// The returned Document has Source set to the file base name.
	Load(ctx context.Context, path string) (*domain.Document, error)
}

// LoaderRegistry selects a loader by file extension.
type LoaderRegistry interface {
	// For returns the loader for path, or domain.ErrUnsupportedFormat.
	For(path string) (DocumentLoader, error)

	// Load is a convenience for For(path) then Load.
	Load(ctx context.Context, path string) (*domain.Document, error)
}
