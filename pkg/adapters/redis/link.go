// Package redis carries the host line protocol over Redis pub/sub, for hosts that
// run on another machine and reach the bridge through a shared broker.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/framing"
	"github.com/aretw0/designbridge/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultChannel is the pub/sub channel shared by the bridge and the host.
	DefaultChannel = "designbridge"
	// DefaultLeaseTTL bounds how long a crashed bridge keeps the channel claimed.
	DefaultLeaseTTL = 15 * time.Second
)

// Launcher attaches to a host through a Redis channel.
// Commands and responses travel on the same channel, one message per line.
type Launcher struct {
	client   *backend.Client
	channel  string
	leaseTTL time.Duration
	logger   *slog.Logger
}

var _ ports.HostLauncher = (*Launcher)(nil)

// Option configures the Launcher.
type Option func(*Launcher)

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(l *Launcher) {
		l.channel = channel
	}
}

// WithLeaseTTL sets the channel lease duration.
func WithLeaseTTL(ttl time.Duration) Option {
	return func(l *Launcher) {
		l.leaseTTL = ttl
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// NewFromClient creates a Launcher using an existing client. The caller owns the client.
func NewFromClient(client *backend.Client, opts ...Option) *Launcher {
	l := &Launcher{
		client:   client,
		channel:  DefaultChannel,
		leaseTTL: DefaultLeaseTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LeaseKey is the key guarding the launcher's channel.
func (l *Launcher) LeaseKey() string {
	return l.channel + ":bridge"
}

// Launch claims the channel and subscribes to it. An unreachable broker or a
// claimed channel is reported as domain.ErrLaunchFailed.
func (l *Launcher) Launch(ctx context.Context) (ports.Link, error) {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis unreachable: %v", domain.ErrLaunchFailed, err)
	}

	ls, err := acquireLease(ctx, l.client, l.LeaseKey(), l.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLaunchFailed, err)
	}

	sub := l.client.Subscribe(ctx, l.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		_ = ls.release(context.Background())
		return nil, fmt.Errorf("%w: subscribe %s: %v", domain.ErrLaunchFailed, l.channel, err)
	}

	linkCtx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	k := &link{
		client:  l.client,
		channel: l.channel,
		sub:     sub,
		lease:   ls,
		logger:  l.logger,
		framer:  framing.New(),
		ctx:     linkCtx,
		cancel:  cancel,
		pr:      pr,
		pw:      pw,
	}

	k.wg.Add(2)
	go func() {
		defer k.wg.Done()
		k.receive()
	}()
	go func() {
		defer k.wg.Done()
		ls.keep(linkCtx, func(err error) {
			l.logger.Error("Lost channel lease; another bridge may answer this host", "channel", l.channel, "err", err)
		})
	}()

	l.logger.Info("Attached to host channel", "channel", l.channel)
	return k, nil
}

// link adapts a subscription into a byte stream and publishes outgoing lines.
type link struct {
	client  *backend.Client
	channel string
	sub     *backend.PubSub
	lease   *lease
	logger  *slog.Logger

	writeMu sync.Mutex
	framer  *framing.LineFramer

	ctx    context.Context
	cancel context.CancelFunc
	pr     *io.PipeReader
	pw     *io.PipeWriter
	wg     sync.WaitGroup
	once   sync.Once
}

// receive turns every channel message into one line on the read side.
func (k *link) receive() {
	broken := false
	for msg := range k.sub.Channel() {
		if broken {
			continue
		}
		if _, err := k.pw.Write([]byte(msg.Payload + "\n")); err != nil {
			broken = true
		}
	}
	k.pw.CloseWithError(io.EOF)
}

func (k *link) Read(p []byte) (int, error) {
	return k.pr.Read(p)
}

// Write publishes each complete line in p as its own message.
func (k *link) Write(p []byte) (int, error) {
	k.writeMu.Lock()
	defer k.writeMu.Unlock()

	for _, line := range k.framer.Feed(p) {
		if err := k.client.Publish(k.ctx, k.channel, line).Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return 0, io.ErrClosedPipe
			}
			return 0, fmt.Errorf("publish to %s: %w", k.channel, err)
		}
	}
	return len(p), nil
}

func (k *link) Close() error {
	var err error
	k.once.Do(func() {
		k.cancel()
		k.pr.Close()
		err = k.sub.Close()
		k.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if rerr := k.lease.release(ctx); rerr != nil {
			k.logger.Warn("Failed to release channel lease", "err", rerr)
		}
		k.logger.Info("Detached from host channel", "channel", k.channel)
	})
	return err
}
