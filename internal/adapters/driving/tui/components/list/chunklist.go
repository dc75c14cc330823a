// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/styles"
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// ChunkList shows the context retrieved for the latest answer.
type ChunkList struct {
	chunks   []domain.Chunk
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewChunkList creates an empty chunk list.
func NewChunkList(s *styles.Styles) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ChunkList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *ChunkList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ChunkList) Update(msg tea.Msg) (*ChunkList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.MoveUp()
		case tea.KeyDown:
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the chunk headers and a preview of the selected chunk.
func (r *ChunkList) View() string {
	if len(r.chunks) == 0 {
		return r.styles.Muted.Render("No context retrieved yet")
	}

	lines := make([]string, 0, len(r.chunks)+4)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Context (%d chunks)", len(r.chunks))))

	for i := range r.chunks {
		lines = append(lines, r.renderHeader(i, &r.chunks[i]))
	}

	previewLines := r.height - len(lines) - 1
	if previewLines < 1 {
		previewLines = 1
	}
	lines = append(lines, "")
	for _, l := range wrap(r.chunks[r.selected].Content, r.width-4, previewLines) {
		lines = append(lines, r.styles.Muted.Render("  "+l))
	}

	return strings.Join(lines, "\n")
}

func (r *ChunkList) renderHeader(index int, c *domain.Chunk) string {
	text := fmt.Sprintf("[%d] %s #%d  chars %d-%d", index+1, c.Source, c.Position, c.Offset, c.End())
	if index == r.selected {
		return r.styles.Selected.Render("> " + text)
	}
	return r.styles.Normal.Render("  " + text)
}

// wrap breaks text on rune boundaries into at most maxLines lines.
func wrap(text string, width, maxLines int) []string {
	if width < 10 {
		width = 10
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)

	var lines []string
	for len(runes) > 0 && len(lines) < maxLines {
		n := min(width, len(runes))
		lines = append(lines, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 && len(lines) > 0 {
		last := []rune(lines[len(lines)-1])
		if len(last) > 3 {
			last = last[:len(last)-3]
		}
		lines[len(lines)-1] = string(last) + "..."
	}
	return lines
}

// SetChunks replaces the list contents.
func (r *ChunkList) SetChunks(chunks []domain.Chunk) {
	r.chunks = chunks
	r.selected = 0
}

// Chunks returns the current chunks.
func (r *ChunkList) Chunks() []domain.Chunk {
	return r.chunks
}

// Selected returns the index of the selected chunk.
func (r *ChunkList) Selected() int {
	return r.selected
}

// SelectedChunk returns the selected chunk, or nil if the list is empty.
func (r *ChunkList) SelectedChunk() *domain.Chunk {
	if len(r.chunks) == 0 {
		return nil
	}
	return &r.chunks[r.selected]
}

// MoveUp moves selection up.
func (r *ChunkList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ChunkList) MoveDown() {
	if r.selected < len(r.chunks)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ChunkList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Height returns the current height.
func (r *ChunkList) Height() int {
	return r.height
}

// IsEmpty returns whether the list is empty.
func (r *ChunkList) IsEmpty() bool {
	return len(r.chunks) == 0
}
