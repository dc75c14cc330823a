// Package sidebar renders the collection summary beside the chat.
package sidebar

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/styles"
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// Width is the sidebar's outer width in cells.
const Width = 30

// Sidebar shows the current document, questions asked and collection size.
type Sidebar struct {
	styles    *styles.Styles
	document  string
	questions int
	stats     domain.CollectionStats
	loaded    bool
	height    int
}

// New creates an empty sidebar.
func New(s *styles.Styles) *Sidebar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Sidebar{styles: s, height: 10}
}

// SetDocument records the document most recently processed in this session.
func (b *Sidebar) SetDocument(source string) {
	b.document = source
}

// Document returns the current document name.
func (b *Sidebar) Document() string {
	return b.document
}

// CountQuestion increments the questions-asked counter.
func (b *Sidebar) CountQuestion() {
	b.questions++
}

// Questions returns the number of questions asked since the last clear.
func (b *Sidebar) Questions() int {
	return b.questions
}

// ResetQuestions zeroes the counter.
func (b *Sidebar) ResetQuestions() {
	b.questions = 0
}

// SetStats replaces the collection summary.
func (b *Sidebar) SetStats(stats domain.CollectionStats) {
	b.stats = stats
	b.loaded = true
}

// Stats returns the last collection summary.
func (b *Sidebar) Stats() domain.CollectionStats {
	return b.stats
}

// SetHeight sets the sidebar height.
func (b *Sidebar) SetHeight(height int) {
	b.height = height
}

// View renders the sidebar.
func (b *Sidebar) View() string {
	inner := Width - 4

	document := "(none this session)"
	if b.document != "" {
		document = truncate(filepath.Base(b.document), inner)
	}

	entries := "..."
	documents := "..."
	collection := "..."
	if b.loaded {
		entries = fmt.Sprintf("%d", b.stats.Entries)
		documents = fmt.Sprintf("%d", len(b.stats.Sources))
		collection = truncate(b.stats.Collection, inner)
	}

	lines := []string{
		b.styles.Subtitle.Render("Current document"),
		document,
		"",
		b.styles.Subtitle.Render("Questions asked"),
		fmt.Sprintf("%d", b.questions),
		"",
		b.styles.Subtitle.Render("Collection"),
		collection,
		b.styles.Muted.Render(entries + " entries, " + documents + " documents"),
	}

	style := b.styles.Sidebar.Width(Width - 2)
	if b.height > 2 {
		style = style.Height(b.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
