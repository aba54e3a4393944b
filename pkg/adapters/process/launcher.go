// Package process launches the host tool as a child process and speaks the line
// protocol over its standard streams.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/framing"
	"github.com/aretw0/designbridge/pkg/ports"
)

// waitDelay bounds how long Close waits for the child's streams after killing it.
const waitDelay = 2 * time.Second

// Launcher spawns the host tool described by a Config.
type Launcher struct {
	cfg    Config
	logger *slog.Logger
}

var _ ports.HostLauncher = (*Launcher)(nil)

// LauncherOption configures the Launcher.
type LauncherOption func(*Launcher)

// WithLogger configures the structured logger. The child's stderr is logged through it.
func WithLogger(logger *slog.Logger) LauncherOption {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// NewLauncher creates a Launcher for cfg.
func NewLauncher(cfg Config, opts ...LauncherOption) *Launcher {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	l := &Launcher{
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch locates and starts the host tool.
// It returns domain.ErrHostToolNotFound when the command is not on PATH and
// domain.ErrLaunchFailed when the process cannot be started.
func (l *Launcher) Launch(ctx context.Context) (ports.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := exec.LookPath(l.cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrHostToolNotFound, l.cfg.Command, err)
	}

	cmd := exec.Command(path, l.cfg.Args...)
	cmd.Dir = l.cfg.Dir
	cmd.Env = cmd.Environ()
	for k, v := range l.cfg.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = &stderrLogger{logger: l.logger, framer: framing.New()}
	cmd.WaitDelay = waitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to open host stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLaunchFailed, path, err)
	}

	l.logger.Info("Host process started", "command", path, "pid", cmd.Process.Pid)
	return &link{cmd: cmd, stdin: stdin, stdout: stdout, logger: l.logger}, nil
}

// link is the bridge side of a running host process.
type link struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *slog.Logger

	once sync.Once
	err  error
}

func (k *link) Read(p []byte) (int, error)  { return k.stdout.Read(p) }
func (k *link) Write(p []byte) (int, error) { return k.stdin.Write(p) }

// Close stops the child and reaps it. Safe to call more than once.
func (k *link) Close() error {
	k.once.Do(func() {
		_ = k.stdin.Close()
		if err := k.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			k.logger.Debug("Killing host process", "err", err)
		}
		err := k.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			k.err = err
		}
		k.logger.Info("Host process stopped", "state", k.cmd.ProcessState.String())
	})
	return k.err
}

// stderrLogger forwards the child's diagnostic output line by line.
type stderrLogger struct {
	mu     sync.Mutex
	logger *slog.Logger
	framer *framing.LineFramer
}

func (s *stderrLogger) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.framer.Feed(p) {
		s.logger.Debug("host stderr", "line", string(line))
	}
	return len(p), nil
}
