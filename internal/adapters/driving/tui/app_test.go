package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/messages"
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(NewPorts(&MockPipeline{}))
	require.NoError(t, err)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Ready())
	assert.NotNil(t, app.Chat())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingPipeline)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	assert.NotNil(t, newTestApp(t).Init())
}

func TestApp_View_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", newTestApp(t).View())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.True(t, app.Chat().Ready())
	assert.Contains(t, app.View(), "DocChatter")
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Help(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(120, 40)

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	view := app.View()
	assert.Contains(t, view, "ctrl+o")
	assert.Contains(t, view, "never sent to the model")

	// Typing is ignored on the help screen.
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, "", app.Chat().Input())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewChat, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_ViewChanged(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	assert.Equal(t, messages.ViewHelp, app.CurrentView())
}

func TestApp_ForwardsResultsWhileOnHelp(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(120, 40)
	app.Update(tea.KeyMsg{Type: tea.KeyF1})

	app.Update(messages.QuestionAnswered{
		Question: "q",
		State:    &domain.QueryState{Question: "q", Answer: "a", Stage: domain.StageDone},
	})

	require.Len(t, app.Chat().History(), 1)
	assert.Equal(t, "a", app.Chat().History()[0].Answer)
}

func TestApp_TypingReachesChat(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(120, 40)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})

	assert.Equal(t, "h", app.Chat().Input())
}
