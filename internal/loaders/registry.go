package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/loaders/docx"
	"github.com/Karagwa/DocChatter/internal/loaders/html"
	"github.com/Karagwa/DocChatter/internal/loaders/markdown"
	"github.com/Karagwa/DocChatter/internal/loaders/pdf"
	"github.com/Karagwa/DocChatter/internal/loaders/plaintext"
	"github.com/Karagwa/DocChatter/internal/loaders/textutil"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders.
//
// Files whose extension has no loader go to the fallback loader, if one is
// set, as long as their first bytes look like text.
type Registry struct {
	loaders  map[string]driven.DocumentLoader
	fallback driven.DocumentLoader
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]driven.DocumentLoader)}
}

// DefaultRegistry returns a registry with every built-in loader.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	text := plaintext.New()
	r.Register(text)
	r.SetFallback(text)
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds loader under each of its extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(loader driven.DocumentLoader) {
	for _, ext := range loader.Extensions() {
		r.loaders[strings.ToLower(ext)] = loader
	}
}

// SetFallback sets the loader used for unregistered extensions.
func (r *Registry) SetFallback(loader driven.DocumentLoader) {
	r.fallback = loader
}

// For returns the loader for path by its extension.
func (r *Registry) For(path string) (driven.DocumentLoader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := r.loaders[ext]
	if !ok {
		return nil, r.unsupported(path, "")
	}
	return loader, nil
}

// Load selects a loader for path and runs it. An unregistered extension
// falls back to plain text when the content sniffs as text.
func (r *Registry) Load(ctx context.Context, path string) (*domain.Document, error) {
	loader, err := r.For(path)
	if err != nil {
		if r.fallback == nil {
			return nil, err
		}
		head, readErr := textutil.ReadHead(ctx, path, textutil.SniffLen)
		if readErr != nil {
			return nil, readErr
		}
		if !textutil.LooksLikeText(head) {
			return nil, r.unsupported(path, "binary content, ")
		}
		loader = r.fallback
	}
	return loader.Load(ctx, path)
}

func (r *Registry) unsupported(path, reason string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("%w: %s (%sextension %s; supported: %s)",
		domain.ErrUnsupportedFormat, filepath.Base(path), reason, ext, strings.Join(r.Extensions(), " "))
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
