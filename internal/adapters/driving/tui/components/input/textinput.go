// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/styles"
)

// Prompts for the two input modes.
const (
	AskLabel          = "Ask: "
	AskPlaceholder    = "Ask a question about your documents..."
	UploadLabel       = "Path: "
	UploadPlaceholder = "Path to a .txt, .md, .html, .pdf or .docx file"
)

// ChatInput is a single-line prompt with a label that changes with the mode.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewChatInput creates a focused input in question mode.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = AskPlaceholder
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 50

	return &ChatInput{
		textinput: ti,
		styles:    s,
		label:     AskLabel,
		width:     50,
	}
}

// Init initialises the input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the label and input box.
func (c *ChatInput) View() string {
	label := c.styles.Title.Render(c.label)
	input := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// SetPrompt switches label and placeholder and clears the value.
func (c *ChatInput) SetPrompt(label, placeholder string) {
	c.label = label
	c.textinput.Placeholder = placeholder
	c.textinput.Reset()
}

// Label returns the current label.
func (c *ChatInput) Label() string {
	return c.label
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the total width including the label.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	inputWidth := width - lipgloss.Width(c.label) - 4
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
