package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
)

// CreateLogger configures the application logger from a textual level.
// Logs always go to stderr; stdout belongs to command output and the MCP stdio transport.
func CreateLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// DebugHooks logs every command crossing the bridge at debug level, then calls next.
func DebugHooks(logger *slog.Logger, next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.CommandEvent) {
			logger.Debug("Dispatch", "command_id", e.CommandID, "kind", e.Kind, "state", e.State)
			if next.OnDispatch != nil {
				next.OnDispatch(ctx, e)
			}
		},
		OnSettle: func(ctx context.Context, e *domain.CommandEvent) {
			if e.Err != nil {
				logger.Debug("Settle (Error)", "command_id", e.CommandID, "kind", e.Kind, "err", e.Err)
			} else {
				logger.Debug("Settle", "command_id", e.CommandID, "kind", e.Kind, "duration", e.Duration)
			}
			if next.OnSettle != nil {
				next.OnSettle(ctx, e)
			}
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
