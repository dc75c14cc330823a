// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the chat screen is drawn with.
type Theme struct {
	Accent    lipgloss.Color // assistant turns, titles, selection
	Highlight lipgloss.Color // user turns, section headings
	Text      lipgloss.Color
	Dim       lipgloss.Color // hints, metadata, idle status
	Surface   lipgloss.Color // status bar background
	Frame     lipgloss.Color // input and sidebar borders
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		Highlight: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Dim:       lipgloss.Color("#6C7086"),
		Surface:   lipgloss.Color("#181825"),
		Frame:     lipgloss.Color("#45475A"),
		Success:   lipgloss.Color("#A6E3A1"),
		Warning:   lipgloss.Color("#F9E2AF"),
		Error:     lipgloss.Color("#F38BA8"),
	}
}

// Styles contains the lipgloss styles used by the views and components.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style

	// Selected marks the highlighted context chunk.
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style

	// Warning is for recoverable problems the user can fix, such as
	// asking before any document is indexed.
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style

	// Question and Answer label the turns of the transcript.
	Question lipgloss.Style
	Answer   lipgloss.Style

	Sidebar lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame).
		Padding(0, 1)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Highlight).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Dim),
		Selected: fg(theme.Text).Background(theme.Accent).Bold(true),

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: framed,
		StatusBar:  fg(theme.Dim).Background(theme.Surface).Padding(0, 1),
		Help:       fg(theme.Dim),

		Question: fg(theme.Highlight).Bold(true),
		Answer:   fg(theme.Accent).Bold(true),

		Sidebar: framed,
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
