// Package pdf extracts the text layer of PDF files.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/loaders/textutil"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles PDF documents.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".pdf"}
}

// Load extracts plain text from every page. Scanned PDFs without a text
// layer yield an empty document.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	if _, err := textutil.ReadFile(ctx, path); err != nil {
		return nil, err
	}

	content, err := extract(path)
	if err != nil {
		return nil, err
	}
	return textutil.NewDocument(path, content, textutil.UTF8), nil
}

// extract recovers from parser panics on malformed files.
func extract(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed pdf %s: %v", domain.ErrInvalidInput, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %w", domain.ErrInvalidInput, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %w", domain.ErrInvalidInput, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
