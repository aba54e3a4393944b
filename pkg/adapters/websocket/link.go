// Package websocket lets an in-editor plugin dial the bridge directly. The bridge
// listens, the first plugin to connect becomes the host, and every text message
// carries one protocol line.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/framing"
	"github.com/aretw0/designbridge/pkg/ports"
	"github.com/gorilla/websocket"
)

const (
	DefaultAddr           = "127.0.0.1:3055"
	DefaultPath           = "/bridge"
	DefaultConnectTimeout = 30 * time.Second
)

// Launcher waits for the plugin to connect.
type Launcher struct {
	addr           string
	path           string
	connectTimeout time.Duration
	logger         *slog.Logger
	up             websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	conns    chan *websocket.Conn
	attached bool
}

var _ ports.HostLauncher = (*Launcher)(nil)

// Option configures the Launcher.
type Option func(*Launcher)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(l *Launcher) {
		l.addr = addr
	}
}

// WithPath sets the HTTP path the plugin dials.
func WithPath(path string) Option {
	return func(l *Launcher) {
		l.path = path
	}
}

// WithConnectTimeout bounds how long Launch waits for the plugin.
func WithConnectTimeout(d time.Duration) Option {
	return func(l *Launcher) {
		l.connectTimeout = d
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// NewLauncher creates a websocket Launcher.
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{
		addr:           DefaultAddr,
		path:           DefaultPath,
		connectTimeout: DefaultConnectTimeout,
		logger:         logging.NewNop(),
		conns:          make(chan *websocket.Conn),
		up: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen binds the listener without waiting for the plugin. Launch calls it when needed.
func (l *Launcher) Listen() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc(l.path, l.handleUpgrade)
	l.listener = ln
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	l.server = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("Plugin listener stopped", "err", err)
		}
	}()
	l.logger.Info("Waiting for plugin", "url", "ws://"+ln.Addr().String()+l.path)
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (l *Launcher) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return ""
	}
	return l.listener.Addr().String()
}

func (l *Launcher) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	busy := l.attached
	l.mu.Unlock()
	if busy {
		http.Error(w, "a plugin is already attached", http.StatusConflict)
		return
	}

	conn, err := l.up.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Warn("Plugin upgrade failed", "err", err)
		return
	}

	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()
	select {
	case l.conns <- conn:
	case <-timer.C:
		// Nobody is launching; the bridge is not accepting plugins right now.
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "bridge not ready"))
		conn.Close()
	}
}

// Launch waits for the plugin. If none connects within the connect timeout the
// host is reported as not found, with a hint on how to start it.
func (l *Launcher) Launch(ctx context.Context) (ports.Link, error) {
	if err := l.Listen(); err != nil {
		return nil, fmt.Errorf("%w: listen %s: %v", domain.ErrLaunchFailed, l.addr, err)
	}

	timer := time.NewTimer(l.connectTimeout)
	defer timer.Stop()

	select {
	case conn := <-l.conns:
		l.mu.Lock()
		l.attached = true
		l.mu.Unlock()
		l.logger.Info("Plugin connected", "remote", conn.RemoteAddr().String())
		return newLink(conn, l), nil
	case <-timer.C:
		l.shutdown()
		return nil, fmt.Errorf("%w: no plugin connected to ws://%s%s within %s",
			domain.ErrHostToolNotFound, l.addr, l.path, l.connectTimeout)
	case <-ctx.Done():
		l.shutdown()
		return nil, ctx.Err()
	}
}

func (l *Launcher) shutdown() {
	l.mu.Lock()
	server := l.server
	l.server = nil
	l.listener = nil
	l.mu.Unlock()
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Close()
	}
}

// link adapts a websocket connection to the line stream the host executor reads.
type link struct {
	conn     *websocket.Conn
	launcher *Launcher

	writeMu sync.Mutex
	framer  *framing.LineFramer

	pr   *io.PipeReader
	pw   *io.PipeWriter
	done chan struct{}
	once sync.Once
}

func newLink(conn *websocket.Conn, l *Launcher) *link {
	pr, pw := io.Pipe()
	k := &link{
		conn:     conn,
		launcher: l,
		framer:   framing.New(),
		pr:       pr,
		pw:       pw,
		done:     make(chan struct{}),
	}
	go k.receive()
	return k
}

func (k *link) receive() {
	defer close(k.done)
	for {
		_, msg, err := k.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = io.EOF
			}
			k.pw.CloseWithError(err)
			return
		}
		if _, err := k.pw.Write(append(msg, '\n')); err != nil {
			return
		}
	}
}

func (k *link) Read(p []byte) (int, error) {
	return k.pr.Read(p)
}

// Write sends each complete line in p as a text message.
func (k *link) Write(p []byte) (int, error) {
	k.writeMu.Lock()
	defer k.writeMu.Unlock()
	for _, line := range k.framer.Feed(p) {
		if err := k.conn.WriteMessage(websocket.TextMessage, line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (k *link) Close() error {
	var err error
	k.once.Do(func() {
		k.writeMu.Lock()
		_ = k.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bridge closing"),
			time.Now().Add(time.Second))
		k.writeMu.Unlock()

		k.pr.Close()
		err = k.conn.Close()
		<-k.done
		k.launcher.shutdown()
	})
	return err
}
