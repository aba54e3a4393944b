package designbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/adapters/simulated"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/ports"
	"github.com/aretw0/designbridge/pkg/session"
)

// Bridge is the entry point for issuing design commands.
// It owns the session context and the execution strategy chosen at construction.
type Bridge struct {
	exec   ports.Executor
	store  *session.Store
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Option defines a functional option for configuring the Bridge.
type Option func(*Bridge)

// WithExecutor selects the execution strategy. Defaults to a simulated executor.
func WithExecutor(exec ports.Executor) Option {
	return func(b *Bridge) {
		b.exec = exec
	}
}

// WithStore injects the session context store.
func WithStore(store *session.Store) Option {
	return func(b *Bridge) {
		b.store = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bridge) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New creates a Bridge. Call Start before sending commands.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.exec == nil {
		b.exec = simulated.New(simulated.WithLogger(b.logger))
	}
	if b.store == nil {
		b.store = session.NewStore(session.WithLogger(b.logger))
	}
	return b
}

// Start starts the execution strategy. Only fatal launcher errors are returned:
// a missing host leaves the bridge in HostUnavailable with placeholder responses.
func (b *Bridge) Start(ctx context.Context) error {
	if b.isClosed() {
		return domain.ErrBridgeClosed
	}
	if err := b.exec.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	b.logger.Info("Bridge started", "state", b.exec.State())
	return nil
}

// Execute wraps payload in a new command and sends it.
func (b *Bridge) Execute(ctx context.Context, payload domain.Payload) (domain.Response, error) {
	return b.Send(ctx, domain.NewCommand(payload))
}

// Send dispatches cmd and returns its response.
//
// Missing ids are filled from the session context before dispatch, and the
// response is folded back into it whether or not it succeeded. A response with
// success=false is returned along with a *domain.MutationError.
func (b *Bridge) Send(ctx context.Context, cmd domain.Command) (domain.Response, error) {
	if b.isClosed() {
		return domain.Response{}, domain.ErrBridgeClosed
	}
	if cmd.Payload == nil {
		return domain.Response{}, &domain.ProtocolError{Op: "send", Err: errors.New("command has no payload")}
	}
	if cmd.ID == "" {
		cmd.ID = domain.NewCommandID()
	}
	cmd = b.store.Inject(cmd)

	event := &domain.CommandEvent{
		Timestamp: b.now(),
		CommandID: cmd.ID,
		Kind:      cmd.Kind(),
		State:     b.exec.State(),
	}
	if b.hooks.OnDispatch != nil {
		b.hooks.OnDispatch(ctx, event)
	}

	start := b.now()
	resp, err := b.exec.Execute(ctx, cmd, b.store.Get())
	event.Duration = b.now().Sub(start)

	if err != nil {
		event.Err = err
		b.settle(ctx, event)
		b.logger.Warn("Command failed", "command_id", cmd.ID, "kind", cmd.Kind(), "err", err)
		return domain.Response{}, err
	}

	b.store.ApplyResponse(resp)
	event.Success = resp.Success

	if !resp.Success {
		merr := &domain.MutationError{Kind: cmd.Kind(), CommandID: cmd.ID, Message: resp.Error}
		event.Err = merr
		b.settle(ctx, event)
		b.logger.Info("Host rejected command", "command_id", cmd.ID, "kind", cmd.Kind(), "err", merr)
		return resp, merr
	}

	b.settle(ctx, event)
	b.logger.Debug("Command settled",
		"command_id", cmd.ID,
		"kind", cmd.Kind(),
		"placeholder", resp.Placeholder,
		"duration", event.Duration,
	)
	return resp, nil
}

func (b *Bridge) settle(ctx context.Context, event *domain.CommandEvent) {
	if b.hooks.OnSettle != nil {
		b.hooks.OnSettle(ctx, event)
	}
}

// SessionContext returns a snapshot of the session context.
func (b *Bridge) SessionContext() domain.SessionContext {
	return b.store.Get()
}

// State reports the execution strategy's lifecycle state.
func (b *Bridge) State() domain.State {
	return b.exec.State()
}

// Close stops the execution strategy. Commands still waiting on a host are
// discarded and later calls to Send return domain.ErrBridgeClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.logger.Info("Bridge closing")
	return b.exec.Close()
}

func (b *Bridge) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
