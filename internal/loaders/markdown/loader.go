// Package markdown loads Markdown files as plain text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/loaders/textutil"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles Markdown documents.
type Loader struct{}

// New creates a new Markdown loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Load reads path and strips Markdown syntax, keeping the prose and code.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	data, err := textutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	content, encoding, err := textutil.Decode(data, "text/markdown")
	if err != nil {
		return nil, err
	}

	return textutil.NewDocument(path, Strip(content), encoding), nil
}

var (
	codeFences = regexp.MustCompile("(?m)^\\s*(```|~~~).*$\n?")
	inlineCode = regexp.MustCompile("`([^`]+)`")
	images     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis   = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	blockquote = regexp.MustCompile(`(?m)^>\s?`)
	hr         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// Strip removes common Markdown formatting.
func Strip(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeFences.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
