// Package correlator pairs asynchronous responses with the callers waiting on them.
package correlator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
)

var (
	// ErrDuplicateID is returned when an id is registered twice while in flight.
	ErrDuplicateID = errors.New("command id already pending")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("correlator closed")
)

// Outcome is delivered exactly once to the channel returned by Register.
type Outcome struct {
	Response domain.Response
	Err      error
}

// Correlator maps command ids to single-use result channels.
// Removing the entry before delivering makes a second resolution impossible.
type Correlator struct {
	mu      sync.Mutex
	pending map[string]chan Outcome
	closed  bool
	done    chan struct{}
	logger  *slog.Logger
}

// Option configures the Correlator.
type Option func(*Correlator)

// WithLogger configures a logger for dropped responses.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Correlator) {
		c.logger = logger
	}
}

// New creates an empty Correlator.
func New(opts ...Option) *Correlator {
	c := &Correlator{
		pending: make(map[string]chan Outcome),
		done:    make(chan struct{}),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register reserves id and returns the channel its outcome will be sent on.
func (c *Correlator) Register(id string) (<-chan Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if _, exists := c.pending[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	ch := make(chan Outcome, 1)
	c.pending[id] = ch
	return ch, nil
}

// take removes and returns the entry for id.
func (c *Correlator) take(id string) (chan Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return ch, ok
}

// Resolve delivers resp to the caller registered under resp.ID.
// A response nobody waits for is logged and dropped; it returns false.
func (c *Correlator) Resolve(resp domain.Response) bool {
	ch, ok := c.take(resp.ID)
	if !ok {
		c.logger.Debug("Dropping response with no pending command",
			"command_id", resp.ID,
			"kind", resp.Kind,
		)
		return false
	}
	ch <- Outcome{Response: resp}
	return true
}

// Fail delivers err to the caller registered under id.
func (c *Correlator) Fail(id string, err error) bool {
	ch, ok := c.take(id)
	if !ok {
		return false
	}
	ch <- Outcome{Err: err}
	return true
}

// FailAll delivers err to every pending caller and returns how many there were.
func (c *Correlator) FailAll(err error) int {
	c.mu.Lock()
	entries := c.pending
	c.pending = make(map[string]chan Outcome)
	c.mu.Unlock()

	for _, ch := range entries {
		ch <- Outcome{Err: err}
	}
	return len(entries)
}

// Cancel removes id without delivering anything.
func (c *Correlator) Cancel(id string) bool {
	_, ok := c.take(id)
	return ok
}

// Wait blocks until the outcome for id arrives, ctx ends or the correlator closes.
// When ctx ends first the entry is cancelled so a late response is dropped.
func (c *Correlator) Wait(ctx context.Context, id string, ch <-chan Outcome) (domain.Response, error) {
	select {
	case out := <-ch:
		return out.Response, out.Err
	case <-ctx.Done():
		c.Cancel(id)
		// The response may have raced the cancellation.
		select {
		case out := <-ch:
			return out.Response, out.Err
		default:
		}
		return domain.Response{}, ctx.Err()
	case <-c.done:
		return domain.Response{}, ErrClosed
	}
}

// Pending returns the number of commands awaiting a response.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close discards every pending entry without delivering to it and wakes waiters
// with ErrClosed. Safe to call more than once.
func (c *Correlator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if n := len(c.pending); n > 0 {
		c.logger.Debug("Discarding pending commands", "count", n)
	}
	c.pending = make(map[string]chan Outcome)
	close(c.done)
}
