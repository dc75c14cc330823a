// Package html loads HTML pages as readable text.
package html

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/loaders/textutil"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles HTML documents.
type Loader struct{}

// New creates a new HTML loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Load reads path, honouring any declared charset, and extracts body text.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	data, err := textutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	raw, encoding, err := textutil.Decode(data, "text/html")
	if err != nil {
		return nil, err
	}

	content, err := ExtractText(raw)
	if err != nil {
		return nil, err
	}
	return textutil.NewDocument(path, content, encoding), nil
}

const (
	dropSelector  = "head, script, style, noscript, svg, template"
	blockSelector = "p, div, br, hr, h1, h2, h3, h4, h5, h6, li, tr, blockquote, pre, table, section, article, header, footer"
)

var (
	multiSpaces   = regexp.MustCompile(`[ \t\x{00a0}]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// ExtractText returns the visible text of an HTML page, one block per line.
func ExtractText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", domain.ErrInvalidInput, err)
	}

	doc.Find(dropSelector).Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	content := multiSpaces.ReplaceAllString(doc.Text(), " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n"), nil
}
