// Package host implements the execution strategy that forwards commands to a live
// host over a Link, one JSON object per line in each direction.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/correlator"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/framing"
	"github.com/aretw0/designbridge/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultPlaceholderDelay is the latency of placeholder responses while the host is unavailable.
const DefaultPlaceholderDelay = time.Second

// readChunkSize is the buffer used when reading from the link.
const readChunkSize = 32 * 1024

// ManualActivation is surfaced to the operator when the host cannot be located.
const ManualActivation = "Host not detected. Open the design file, start the bridge plugin " +
	"(Plugins > Development > Design Bridge) and restart this process in host mode. " +
	"Until then every command returns a placeholder and no document is changed."

// Executor dispatches commands to the host and correlates its answers.
type Executor struct {
	launcher         ports.HostLauncher
	corr             *correlator.Correlator
	logger           *slog.Logger
	diag             *slog.Logger
	placeholderDelay time.Duration
	commandTimeout   time.Duration
	instruction      string

	mu    sync.RWMutex
	state domain.State
	link  ports.Link

	writeMu sync.Mutex // Serializes dispatch so lines reach the host in send order.

	group  *errgroup.Group
	cancel context.CancelFunc
	closed bool
}

var _ ports.Executor = (*Executor)(nil)

// Option configures the Executor.
type Option func(*Executor)

// WithLogger configures the structured logger. The diagnostic channel derives from it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
		e.diag = logging.Diagnostic(logger)
	}
}

// WithDiagnosticLogger overrides the operator-facing channel.
func WithDiagnosticLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.diag = logger
	}
}

// WithPlaceholderDelay sets the latency of placeholder responses.
func WithPlaceholderDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.placeholderDelay = d
	}
}

// WithCommandTimeout bounds how long a dispatched command waits for its response.
// Zero (the default) waits for as long as the caller's context allows.
func WithCommandTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.commandTimeout = d
	}
}

// WithManualActivation replaces the instruction shown when the host is not found.
func WithManualActivation(text string) Option {
	return func(e *Executor) {
		e.instruction = text
	}
}

// WithCorrelator injects the response correlator.
func WithCorrelator(c *correlator.Correlator) Option {
	return func(e *Executor) {
		e.corr = c
	}
}

// New creates a host Executor that obtains its link from launcher.
func New(launcher ports.HostLauncher, opts ...Option) *Executor {
	nop := logging.NewNop()
	e := &Executor{
		launcher:         launcher,
		logger:           nop,
		diag:             nop,
		placeholderDelay: DefaultPlaceholderDelay,
		instruction:      ManualActivation,
		state:            domain.StateUninitialized,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.corr == nil {
		e.corr = correlator.New(correlator.WithLogger(e.logger))
	}
	return e
}

// State reports the lifecycle state.
func (e *Executor) State() domain.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Pending returns the number of commands waiting for the host.
func (e *Executor) Pending() int {
	return e.corr.Pending()
}

func (e *Executor) setState(s domain.State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Start launches the host. Missing or failing hosts degrade to HostUnavailable;
// only a fatal launcher error is returned.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != domain.StateUninitialized {
		e.mu.Unlock()
		return fmt.Errorf("host executor already started (state %s)", e.state)
	}
	e.state = domain.StateHostConnecting
	e.mu.Unlock()

	link, err := e.launcher.Launch(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrHostToolNotFound):
		e.setState(domain.StateHostUnavailable)
		e.diag.Warn(e.instruction, "err", err)
		return nil
	case errors.Is(err, domain.ErrLaunchFailed):
		e.setState(domain.StateHostUnavailable)
		e.logger.Error("Host launch failed, continuing with placeholder responses", "err", err)
		e.diag.Warn("Host unavailable: commands will not reach the document", "err", err)
		return nil
	default:
		e.setState(domain.StateHostUnavailable)
		return fmt.Errorf("failed to start host executor: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	group, pumpCtx := errgroup.WithContext(pumpCtx)

	e.mu.Lock()
	e.link = link
	e.state = domain.StateHostConnected
	e.group = group
	e.cancel = cancel
	e.mu.Unlock()

	group.Go(func() error {
		return e.pump(pumpCtx, link)
	})

	e.logger.Info("Host connected")
	return nil
}

// pump reads the link until it closes, resolving every complete response line.
func (e *Executor) pump(ctx context.Context, link ports.Link) error {
	framer := framing.New()
	buf := make([]byte, readChunkSize)
	overflows := 0

	for {
		n, err := link.Read(buf)
		if n > 0 {
			for _, line := range framer.Feed(buf[:n]) {
				e.handleLine(line)
			}
			if framer.Overflows() > overflows {
				overflows = framer.Overflows()
				e.logger.Warn("Discarded oversized partial line from host", "overflows", overflows)
			}
		}
		if err != nil {
			if framer.Buffered() > 0 {
				e.logger.Warn("Host stream ended mid-line", "buffered", framer.Buffered())
			}
			e.disconnected(err)
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handleLine decodes one line. Malformed lines are logged and skipped.
func (e *Executor) handleLine(line []byte) {
	var resp domain.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		perr := &domain.ProtocolError{Op: "decode response", Err: err}
		e.logger.Warn("Skipping malformed line from host", "err", perr, "line", truncate(line, 200))
		return
	}
	if !resp.IsResponse {
		// Our own command echoed back, or a host-initiated message.
		e.logger.Debug("Ignoring non-response message", "command_id", resp.ID, "kind", resp.Kind)
		return
	}
	if resp.ID == "" {
		e.logger.Warn("Skipping response without id", "kind", resp.Kind)
		return
	}
	e.corr.Resolve(resp)
}

// disconnected drops the link and rejects every command still in flight.
func (e *Executor) disconnected(cause error) {
	e.mu.Lock()
	link := e.link
	e.link = nil
	closed := e.closed
	if !closed {
		e.state = domain.StateHostDisconnected
	}
	e.mu.Unlock()

	if closed {
		return
	}
	if link != nil {
		_ = link.Close()
	}
	n := e.corr.FailAll(domain.ErrHostDisconnected)
	e.logger.Warn("Host disconnected", "err", cause, "rejected", n)
	e.diag.Warn("Host process exited; commands will fail until the bridge is restarted")
}

// Execute dispatches cmd according to the state reached at Start.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, _ domain.SessionContext) (domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return domain.Response{}, err
	}

	switch state := e.State(); state {
	case domain.StateHostConnected:
		return e.dispatch(ctx, cmd)
	case domain.StateHostUnavailable:
		return e.placeholder(ctx, cmd)
	case domain.StateHostDisconnected:
		return domain.Response{}, domain.ErrHostDisconnected
	default:
		return domain.Response{}, fmt.Errorf("%w (state %s)", domain.ErrNotStarted, state)
	}
}

func (e *Executor) dispatch(ctx context.Context, cmd domain.Command) (domain.Response, error) {
	line, err := json.Marshal(cmd)
	if err != nil {
		return domain.Response{}, err
	}
	line = append(line, '\n')

	ch, err := e.corr.Register(cmd.ID)
	if err != nil {
		return domain.Response{}, &domain.DispatchError{CommandID: cmd.ID, Err: err}
	}

	if err := e.write(line); err != nil {
		e.corr.Cancel(cmd.ID)
		return domain.Response{}, &domain.DispatchError{CommandID: cmd.ID, Err: err}
	}
	e.logger.Debug("Command dispatched", "command_id", cmd.ID, "kind", cmd.Kind())

	if e.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.commandTimeout)
		defer cancel()
	}
	return e.corr.Wait(ctx, cmd.ID, ch)
}

func (e *Executor) write(line []byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.mu.RLock()
	link := e.link
	e.mu.RUnlock()
	if link == nil {
		return domain.ErrHostDisconnected
	}

	_, err := link.Write(line)
	return err
}

func (e *Executor) placeholder(ctx context.Context, cmd domain.Command) (domain.Response, error) {
	if e.placeholderDelay > 0 {
		timer := time.NewTimer(e.placeholderDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.Response{}, ctx.Err()
		}
	}

	e.diag.Warn("Host unavailable: returning placeholder, no document change was made",
		"command_id", cmd.ID,
		"kind", cmd.Kind(),
	)
	resp := domain.Succeeded(cmd, domain.Data{
		domain.KeyPlaceholder: true,
		"message":             fmt.Sprintf("%s was not applied: host unavailable", cmd.Kind()),
	})
	resp.Placeholder = true
	return resp, nil
}

// Close terminates the host link and discards pending commands without answering them.
func (e *Executor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	link := e.link
	e.link = nil
	cancel := e.cancel
	group := e.group
	e.mu.Unlock()

	e.corr.Close()
	if cancel != nil {
		cancel()
	}
	if link != nil {
		if err := link.Close(); err != nil {
			e.logger.Debug("Closing host link", "err", err)
		}
	}
	if group != nil {
		if err := group.Wait(); err != nil {
			e.logger.Debug("Host reader stopped", "err", err)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
