// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// QuestionAnswered carries the outcome of one question.
// State is set even on failure and records the stage reached.
type QuestionAnswered struct {
	Question string
	State    *domain.QueryState
	Err      error
}

// DocumentProcessed signals an ingestion finished.
type DocumentProcessed struct {
	Path   string
	Report *domain.IngestReport
	Err    error
}

// StatsLoaded carries a fresh description of the collection.
type StatsLoaded struct {
	Stats domain.CollectionStats
	Err   error
}

// ChatCleared signals the visible history was discarded.
type ChatCleared struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
