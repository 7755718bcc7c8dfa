package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"agentic-surfer/internal/domain"
)

// Controller owns a single session for callers without an event loop of
// their own. The lock guards state transitions only and is released while a
// request is outstanding, so a Submit issued meanwhile sees the busy flag and
// does nothing.
type Controller struct {
	dispatcher *Dispatcher
	observer   func(State)

	mu    sync.Mutex
	state State

	// Observer calls are delivered in transition order: each transition takes
	// a ticket under mu and waits its turn under notifyMu.
	issued   uint64
	notifyMu sync.Mutex
	notified uint64
	turn     *sync.Cond
}

type ControllerOption func(*Controller)

// WithObserver registers fn to receive the session after every transcript
// change, in the order the changes happened. fn must not call Submit.
func WithObserver(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.observer = fn
	}
}

func NewController(d *Dispatcher, greeting string, opts ...ControllerOption) (*Controller, error) {
	if d == nil {
		return nil, errors.New("usecase: dispatcher must not be nil")
	}
	if strings.TrimSpace(greeting) == "" {
		greeting = domain.Greeting
	}
	c := &Controller{
		dispatcher: d,
		state:      NewState(greeting),
	}
	c.turn = sync.NewCond(&c.notifyMu)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the current session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) UpdateDraft(text string) {
	c.mu.Lock()
	c.state = c.state.WithDraft(text)
	c.mu.Unlock()
}

// Submit sends the current draft and blocks until the agent's message has been
// appended. It reports whether a request was issued; a blank draft or an
// outstanding request makes it a no-op.
func (c *Controller) Submit(ctx context.Context) bool {
	c.mu.Lock()
	next, req, ok := c.state.Submit()
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.state = next
	c.notifyLocked(next)

	text := domain.ConnectFailureText
	defer func() {
		c.mu.Lock()
		c.state = c.state.Complete(text)
		c.notifyLocked(c.state)
	}()

	text = c.dispatcher.Dispatch(ctx, req)
	return true
}

// notifyLocked is called with mu held. It releases mu, then runs the
// observer once every earlier transition has been delivered.
func (c *Controller) notifyLocked(s State) {
	if c.observer == nil {
		c.mu.Unlock()
		return
	}
	c.issued++
	ticket := c.issued
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for c.notified+1 != ticket {
		c.turn.Wait()
	}
	defer func() {
		c.notified = ticket
		c.turn.Broadcast()
	}()
	c.observer(s)
}
