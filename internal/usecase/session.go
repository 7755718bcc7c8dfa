package usecase

import (
	"strings"

	"agentic-surfer/internal/domain"
)

// Phase is the per-request state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingResponse
)

func (p Phase) String() string {
	if p == PhaseAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

// State is a chat session: the transcript, the unsent draft and the busy
// flag. Every transition returns a new State; the receiver is never changed,
// so a State can be handed to a renderer without copying.
type State struct {
	transcript []domain.Message
	draft      string
	busy       bool
}

// NewState returns an idle session whose transcript holds only the greeting.
func NewState(greeting string) State {
	return State{transcript: []domain.Message{domain.AgentMessage(greeting)}}
}

// Transcript returns a copy of the messages, oldest first.
func (s State) Transcript() []domain.Message {
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s State) Len() int { return len(s.transcript) }

func (s State) Draft() string { return s.draft }

func (s State) Busy() bool { return s.busy }

func (s State) Phase() Phase {
	if s.busy {
		return PhaseAwaitingResponse
	}
	return PhaseIdle
}

// WithDraft replaces the draft.
func (s State) WithDraft(text string) State {
	s.draft = text
	return s
}

// Submit moves an idle session with a non-blank draft to awaiting response:
// the trimmed draft is appended as a user message, the draft is cleared and
// the request to send is returned. A blank draft or a busy session yields the
// unchanged state and false.
func (s State) Submit() (State, domain.QueryRequest, bool) {
	query := strings.TrimSpace(s.draft)
	if query == "" || s.busy {
		return s, domain.QueryRequest{}, false
	}
	s.transcript = appendMessage(s.transcript, domain.UserMessage(query))
	s.draft = ""
	s.busy = true
	return s, domain.NewQueryRequest(query), true
}

// Complete appends the agent's text and returns the session to idle.
func (s State) Complete(text string) State {
	s.transcript = appendMessage(s.transcript, domain.AgentMessage(text))
	s.busy = false
	return s
}

// appendMessage never writes into a backing array another State may share.
func appendMessage(in []domain.Message, m domain.Message) []domain.Message {
	out := make([]domain.Message, len(in), len(in)+1)
	copy(out, in)
	return append(out, m)
}
