// Package tui is the interactive terminal chat: a scrolling transcript, a
// text input and a Send button, driven by a bubbletea update loop that is
// the single owner of the session state.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"agentic-surfer/internal/domain"
	"agentic-surfer/internal/usecase"
)

const (
	title       = "Agentic Surfer"
	placeholder = "Type a message..."
	sendLabel   = "[ Send ]"

	headerHeight = 2 // title + rule
	footerHeight = 2 // rule + input row
)

// Dispatcher runs one exchange and returns the agent text to append.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.QueryRequest) string
}

// Options configures a Model.
type Options struct {
	Greeting      string
	Markdown      bool
	MarkdownStyle string
	Logger        *zap.Logger
}

// replyMsg carries the agent text for the outstanding request.
type replyMsg struct {
	text string
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	ctx        context.Context
	dispatcher Dispatcher
	logger     *zap.Logger

	state usecase.State

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     keyMap
	styles   styles

	markdown      bool
	markdownStyle string
	renderer      *glamour.TermRenderer

	width  int
	height int
	ready  bool
}

// New returns a Model that sends queries through d. ctx is passed to every
// exchange; it is never cancelled by the model itself.
func New(ctx context.Context, d Dispatcher, opts Options) (Model, error) {
	if d == nil {
		return Model{}, errors.New("tui: dispatcher must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	greeting := opts.Greeting
	if strings.TrimSpace(greeting) == "" {
		greeting = domain.Greeting
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	style := opts.MarkdownStyle
	if style == "" {
		style = "dark"
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:           ctx,
		dispatcher:    d,
		logger:        logger,
		state:         usecase.NewState(greeting),
		input:         ti,
		spinner:       sp,
		keys:          defaultKeyMap(),
		styles:        defaultStyles(),
		markdown:      opts.Markdown,
		markdownStyle: style,
	}, nil
}

// State returns the session as currently rendered.
func (m Model) State() usecase.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Send):
			return m.submit()
		}
		var vpCmd, tiCmd tea.Cmd
		if m.ready {
			m.viewport, vpCmd = m.viewport.Update(msg)
		}
		m.input, tiCmd = m.input.Update(msg)
		m.state = m.state.WithDraft(m.input.Value())
		return m, tea.Batch(tiCmd, vpCmd)

	case tea.MouseMsg:
		if m.onSendButton(msg) {
			return m.submit()
		}
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case replyMsg:
		m.state = m.state.Complete(msg.text)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.state.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.ready {
			m.viewport.SetContent(m.renderTranscript())
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit is shared by the Enter key, ctrl+s and the Send button.
func (m Model) submit() (tea.Model, tea.Cmd) {
	next, req, ok := m.state.WithDraft(m.input.Value()).Submit()
	if !ok {
		return m, nil
	}
	m.state = next
	m.input.Reset()
	m.refresh()
	m.logger.Debug("query submitted", zap.Int("transcript_len", m.state.Len()))
	return m, tea.Batch(m.spinner.Tick, m.dispatch(req))
}

// dispatch runs the exchange off the update loop; the reply comes back as a
// replyMsg.
func (m Model) dispatch(req domain.QueryRequest) tea.Cmd {
	ctx, d := m.ctx, m.dispatcher
	return func() tea.Msg {
		return replyMsg{text: d.Dispatch(ctx, req)}
	}
}

func (m *Model) resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	m.width, m.height = width, height

	vpHeight := height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.viewport.KeyMap = transcriptKeyMap()
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}

	inputWidth := m.inputColumns() - len(m.input.Prompt) - 1
	if inputWidth < 1 {
		inputWidth = 1
	}
	m.input.Width = inputWidth

	if m.markdown {
		m.renderer = newRenderer(m.markdownStyle, width-4, m.logger)
	}
	m.refresh()
}

// refresh redraws the transcript and scrolls to the newest message. It runs
// after every transcript change.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// inputColumns is the width reserved for the text input; the Send button
// follows after one space.
func (m Model) inputColumns() int {
	cols := m.width - len(sendLabel) - 1
	if cols < 1 {
		cols = 1
	}
	return cols
}

// sendButtonBounds returns the row and the half-open column range of the
// Send button.
func (m Model) sendButtonBounds() (row, start, end int) {
	row = m.height - 1
	start = m.inputColumns() + 1
	return row, start, start + len(sendLabel)
}

func (m Model) onSendButton(msg tea.MouseMsg) bool {
	if !m.ready || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	row, start, end := m.sendButtonBounds()
	return msg.Y == row && msg.X >= start && msg.X < end
}

func newRenderer(style string, wrap int, logger *zap.Logger) *glamour.TermRenderer {
	if wrap < 10 {
		wrap = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		logger.Warn("markdown renderer unavailable", zap.String("style", style), zap.Error(err))
		return nil
	}
	return r
}
