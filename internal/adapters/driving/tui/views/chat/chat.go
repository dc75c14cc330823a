// Package chat provides the conversation view: transcript, input, context
// panel and collection sidebar.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/components/input"
	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/components/list"
	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/components/sidebar"
	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/components/status"
	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/keymap"
	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/messages"
	"github.com/Karagwa/DocChatter/internal/adapters/driving/tui/styles"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
)

// ErrNoPipeline is reported when the view has nothing to ask.
var ErrNoPipeline = errors.New("chat: pipeline not available")

// EmptyCollectionHint replaces the error when a question reaches an empty
// collection.
const EmptyCollectionHint = "No documents indexed yet. Press ctrl+o to upload one."

// Mode selects what the input submits.
type Mode int

const (
	// ModeAsk submits questions.
	ModeAsk Mode = iota
	// ModeUpload submits a document path.
	ModeUpload
)

// contextPanelHeight is the number of rows the context panel takes when shown.
const contextPanelHeight = 9

// View is the chat screen. History is kept here for display only and is
// never handed to the pipeline.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	chunks     *list.ChunkList
	sidebar    *sidebar.Sidebar
	statusbar  *status.Bar
	spinner    spinner.Model

	pipeline driving.Pipeline
	ctx      context.Context

	history     []domain.ChatTurn
	pending     string
	mode        Mode
	showContext bool

	width  int
	height int
	ready  bool
}

// NewView creates a chat view over pipeline.
func NewView(s *styles.Styles, km *keymap.KeyMap, pipeline driving.Pipeline) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: viewport.New(80, 10),
		chunks:     list.NewChunkList(s),
		sidebar:    sidebar.New(s),
		statusbar:  status.NewBar(s, km),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		pipeline:   pipeline,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context passed to pipeline calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the collection summary.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadStats())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionAnswered:
		v.handleAnswer(msg)
		return v, nil

	case messages.DocumentProcessed:
		return v, v.handleProcessed(msg)

	case messages.StatsLoaded:
		if msg.Err == nil {
			v.sidebar.SetStats(msg.Stats)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case spinner.TickMsg:
		if !v.statusbar.State().Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		if v.mode == ModeUpload {
			v.setMode(ModeAsk)
		}
		return v, nil

	case keymap.Matches(key, v.keymap.Upload):
		if v.mode == ModeUpload {
			v.setMode(ModeAsk)
		} else {
			v.setMode(ModeUpload)
		}
		return v, nil

	case keymap.Matches(key, v.keymap.Clear):
		v.Clear()
		return v, func() tea.Msg { return messages.ChatCleared{} }

	case keymap.Matches(key, v.keymap.Context):
		v.showContext = !v.showContext
		v.layout()
		return v, nil

	case keymap.Matches(key, v.keymap.Up), keymap.Matches(key, v.keymap.Down):
		if v.showContext {
			v.chunks, _ = v.chunks.Update(msg)
		}
		return v, nil

	case keymap.Matches(key, v.keymap.PageUp), keymap.Matches(key, v.keymap.PageDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the input to the pipeline. Nothing is sent while a call is
// in flight or when the input is blank.
func (v *View) submit() tea.Cmd {
	if v.statusbar.State().Busy() {
		return nil
	}
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}
	v.input.Reset()

	if v.mode == ModeUpload {
		v.setMode(ModeAsk)
		v.statusbar.SetState(status.StateProcessing)
		v.statusbar.SetMessage(text)
		return tea.Batch(v.spinner.Tick, v.process(text))
	}

	v.pending = text
	v.sidebar.CountQuestion()
	v.statusbar.SetState(status.StateThinking)
	v.refreshTranscript()
	return tea.Batch(v.spinner.Tick, v.ask(text))
}

// ask runs one independent question. Only the question text is sent.
func (v *View) ask(question string) tea.Cmd {
	pipeline, ctx := v.pipeline, v.ctx
	return func() tea.Msg {
		if pipeline == nil {
			return messages.QuestionAnswered{Question: question, Err: ErrNoPipeline}
		}
		state, err := pipeline.Ask(ctx, question)
		return messages.QuestionAnswered{Question: question, State: state, Err: err}
	}
}

func (v *View) process(path string) tea.Cmd {
	pipeline, ctx := v.pipeline, v.ctx
	return func() tea.Msg {
		if pipeline == nil {
			return messages.DocumentProcessed{Path: path, Err: ErrNoPipeline}
		}
		report, err := pipeline.Ingest(ctx, path, nil)
		return messages.DocumentProcessed{Path: path, Report: report, Err: err}
	}
}

func (v *View) loadStats() tea.Cmd {
	pipeline, ctx := v.pipeline, v.ctx
	return func() tea.Msg {
		if pipeline == nil {
			return messages.StatsLoaded{Err: ErrNoPipeline}
		}
		stats, err := pipeline.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.QuestionAnswered) {
	v.pending = ""
	turn := domain.ChatTurn{Question: msg.Question, Err: msg.Err}
	if msg.State != nil {
		turn.Answer = msg.State.Answer
		if msg.Err == nil {
			v.chunks.SetChunks(msg.State.Context)
		}
	}
	v.history = append(v.history, turn)

	switch {
	case errors.Is(msg.Err, domain.ErrNoDocumentIndexed):
		v.statusbar.SetState(status.StateWarning)
		v.statusbar.SetMessage(EmptyCollectionHint)
	case msg.Err != nil:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	default:
		v.statusbar.Clear()
	}
	v.refreshTranscript()
}

func (v *View) handleProcessed(msg messages.DocumentProcessed) tea.Cmd {
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return nil
	}
	v.sidebar.SetDocument(msg.Report.Source)
	v.statusbar.SetState(status.StateDone)
	v.statusbar.SetMessage(msg.Report.Status())
	return v.loadStats()
}

func (v *View) setMode(m Mode) {
	v.mode = m
	if m == ModeUpload {
		v.input.SetPrompt(input.UploadLabel, input.UploadPlaceholder)
		v.statusbar.SetState(status.StateUpload)
	} else {
		v.input.SetPrompt(input.AskLabel, input.AskPlaceholder)
		if v.statusbar.State() == status.StateUpload {
			v.statusbar.Clear()
		}
	}
	v.layout()
}

// Clear discards the visible history. The index is untouched.
func (v *View) Clear() {
	v.history = nil
	v.pending = ""
	v.sidebar.ResetQuestions()
	v.chunks.SetChunks(nil)
	if !v.statusbar.State().Busy() {
		v.statusbar.Clear()
	}
	v.refreshTranscript()
}

func (v *View) refreshTranscript() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	width := v.transcript.Width
	if width < 20 {
		width = 20
	}
	body := lipgloss.NewStyle().Width(width).PaddingLeft(2)

	if len(v.history) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask a question, or press ctrl+o to process a document.")
	}

	blocks := make([]string, 0, len(v.history)*2+2)
	for _, turn := range v.history {
		blocks = append(blocks,
			v.styles.Question.Render("You"),
			body.Render(turn.Question),
		)
		switch {
		case turn.Err != nil:
			blocks = append(blocks, v.styles.Error.Render("Error"), body.Render(turn.Err.Error()))
		default:
			blocks = append(blocks, v.styles.Answer.Render("Assistant"), body.Render(turn.Answer))
		}
		blocks = append(blocks, "")
	}
	if v.pending != "" {
		blocks = append(blocks,
			v.styles.Question.Render("You"),
			body.Render(v.pending),
		)
	}
	return strings.Join(blocks, "\n")
}

// View renders the chat screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	v.statusbar.SetSpinner(v.spinner.View())

	main := []string{
		v.styles.Title.Render("DocChatter"),
		v.transcript.View(),
	}
	if v.showContext {
		main = append(main, v.chunks.View())
	}
	main = append(main, v.input.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, main...),
		v.sidebar.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, v.statusbar.View())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// layout distributes rows: title, transcript, optional context panel,
// input box (3 rows) and status bar.
func (v *View) layout() {
	mainWidth := v.width - sidebar.Width
	if mainWidth < 30 {
		mainWidth = 30
	}

	transcriptHeight := v.height - 1 - 3 - 1
	if v.showContext {
		transcriptHeight -= contextPanelHeight
	}
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	v.transcript.Width = mainWidth
	v.transcript.Height = transcriptHeight
	v.chunks.SetDimensions(mainWidth, contextPanelHeight)
	v.input.SetWidth(mainWidth)
	v.sidebar.SetHeight(v.height - 1)
	v.statusbar.SetWidth(v.width)
	v.refreshTranscript()
}

// History returns the displayed turns.
func (v *View) History() []domain.ChatTurn {
	return v.history
}

// Mode returns the current input mode.
func (v *View) Mode() Mode {
	return v.mode
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Input returns the current input value.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the input value.
func (v *View) SetInput(s string) {
	v.input.SetValue(s)
}

// Sidebar exposes the sidebar for inspection.
func (v *View) Sidebar() *sidebar.Sidebar {
	return v.sidebar
}

// Context returns the chunks retrieved for the latest answer.
func (v *View) Context() []domain.Chunk {
	return v.chunks.Chunks()
}

// ContextVisible reports whether the context panel is shown.
func (v *View) ContextVisible() bool {
	return v.showContext
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
