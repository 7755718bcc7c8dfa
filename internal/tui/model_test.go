package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"agentic-surfer/internal/domain"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeDispatcher struct {
	mu    sync.Mutex
	reply string
	reqs  []domain.QueryRequest
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req domain.QueryRequest) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.reply
}

func (f *fakeDispatcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func newTestModel(t *testing.T, d Dispatcher) Model {
	t.Helper()
	m, err := New(context.Background(), d, Options{})
	require.NoError(t, err)
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// collectReplies runs cmd and any batched commands, returning the replies
// produced by dispatches. Other messages are dropped.
func collectReplies(cmd tea.Cmd) []replyMsg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case replyMsg:
		return []replyMsg{msg}
	case tea.BatchMsg:
		var out []replyMsg
		for _, c := range msg {
			out = append(out, collectReplies(c)...)
		}
		return out
	}
	return nil
}

// send delivers msg and feeds every resulting reply back into the model.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, r := range collectReplies(cmd) {
		m = update(t, m, r)
	}
	return m
}

func (m Model) sendButtonClick() tea.MouseMsg {
	row, start, _ := m.sendButtonBounds()
	return tea.MouseMsg{X: start + 2, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestNew_NilDispatcher(t *testing.T) {
	_, err := New(context.Background(), nil, Options{})
	require.Error(t, err)
}

func TestNew_SeedsGreeting(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	require.Equal(t, []domain.Message{domain.AgentMessage(domain.Greeting)}, m.State().Transcript())
	require.False(t, m.State().Busy())
}

func TestSubmit_EnterAppendsExchange(t *testing.T) {
	d := &fakeDispatcher{reply: "Hi there"}
	m := newTestModel(t, d)

	m = typeText(t, m, "  hello  ")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	want := []domain.Message{
		domain.AgentMessage(domain.Greeting),
		domain.UserMessage("hello"),
		domain.AgentMessage("Hi there"),
	}
	if diff := cmp.Diff(want, m.State().Transcript()); diff != "" {
		t.Fatalf("transcript mismatch (-want +got):\n%s", diff)
	}
	require.False(t, m.State().Busy())
	require.Empty(t, m.input.Value())
	require.Equal(t, []domain.QueryRequest{{Query: "hello", Mode: domain.DefaultMode}}, d.reqs)
}

func TestSubmit_TriggersAreEquivalent(t *testing.T) {
	run := func(trigger func(Model) tea.Msg) []domain.Message {
		m := newTestModel(t, &fakeDispatcher{reply: "ok"})
		m = typeText(t, m, "ping")
		m = send(t, m, trigger(m))
		return m.State().Transcript()
	}

	enter := run(func(Model) tea.Msg { return tea.KeyMsg{Type: tea.KeyEnter} })
	ctrlS := run(func(Model) tea.Msg { return tea.KeyMsg{Type: tea.KeyCtrlS} })
	click := run(func(m Model) tea.Msg { return m.sendButtonClick() })

	require.Len(t, enter, 3)
	require.Equal(t, enter, ctrlS)
	require.Equal(t, enter, click)
}

func TestSubmit_BlankIsNoop(t *testing.T) {
	d := &fakeDispatcher{reply: "unused"}
	m := newTestModel(t, d)

	m = typeText(t, m, "   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	require.Nil(t, cmd)
	require.Equal(t, 1, m.State().Len())
	require.False(t, m.State().Busy())
	require.Zero(t, d.calls())
}

func TestSubmit_WhileBusyIsNoop(t *testing.T) {
	d := &fakeDispatcher{reply: "first reply"}
	m := newTestModel(t, d)

	m = typeText(t, m, "first")
	next, pending := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.State().Busy())

	m = typeText(t, m, "second")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.Nil(t, cmd)
	require.Equal(t, 2, m.State().Len())

	for _, r := range collectReplies(pending) {
		m = update(t, m, r)
	}
	require.Equal(t, 3, m.State().Len())
	require.Equal(t, 1, d.calls())
	require.False(t, m.State().Busy())
}

func TestInput_EditableWhileBusy(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{reply: "x"})

	m = typeText(t, m, "first")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.State().Busy())

	m = typeText(t, m, "draft")
	require.Equal(t, "draft", m.input.Value())
	require.Equal(t, "draft", m.State().Draft())
}

func TestMouse_ClickOutsideButtonIgnored(t *testing.T) {
	d := &fakeDispatcher{reply: "x"}
	m := newTestModel(t, d)
	m = typeText(t, m, "hello")

	row, start, _ := m.sendButtonBounds()
	m = send(t, m, tea.MouseMsg{X: start - 3, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: start, Y: row - 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: start, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	require.Zero(t, d.calls())
	require.Equal(t, 1, m.State().Len())
}

func TestReply_ScrollsToBottom(t *testing.T) {
	m, err := New(context.Background(), &fakeDispatcher{reply: strings.Repeat("line\n", 20)}, Options{})
	require.NoError(t, err)
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})

	for i := 0; i < 3; i++ {
		m = typeText(t, m, "more")
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}
	require.Equal(t, 7, m.State().Len())
	require.True(t, m.viewport.AtBottom())
}

func TestReply_ConnectFailureShown(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{reply: domain.ConnectFailureText})
	m = typeText(t, m, "hello")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, domain.AgentMessage(domain.ConnectFailureText), m.State().Transcript()[2])
	require.Contains(t, m.View(), domain.ConnectFailureText)
}

func TestView(t *testing.T) {
	m, err := New(context.Background(), &fakeDispatcher{}, Options{})
	require.NoError(t, err)
	require.Equal(t, "Initializing...", m.View())

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	view := m.View()
	require.Contains(t, view, title)
	require.Contains(t, view, sendLabel)
	require.Contains(t, view, domain.Greeting)
}

func TestView_TypingIndicatorWhileBusy(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{reply: "done"})
	m = typeText(t, m, "hello")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	require.Contains(t, m.View(), "thinking")
}

func TestResize_TinyWindow(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{reply: "ok"})
	require.NotPanics(t, func() {
		m = update(t, m, tea.WindowSizeMsg{Width: 1, Height: 1})
		_ = m.View()
		m = update(t, m, tea.WindowSizeMsg{Width: 0, Height: 0})
		_ = m.View()
	})
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
