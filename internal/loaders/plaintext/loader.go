// Package plaintext loads plain text files with encoding detection.
package plaintext

import (
	"context"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/loaders/textutil"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles plain text documents.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".txt", ".text", ".log", ".csv"}
}

// Load reads path and decodes it to UTF-8.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	data, err := textutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	content, encoding, err := textutil.Decode(data, "text/plain")
	if err != nil {
		return nil, err
	}

	return textutil.NewDocument(path, content, encoding), nil
}
