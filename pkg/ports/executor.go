package ports

import (
	"context"

	"github.com/aretw0/designbridge/pkg/domain"
)

// Executor turns commands into responses.
type Executor interface {
	// Start selects the execution mode. It is called once; the mode never changes afterwards.
	// A returned error is fatal for the bridge.
	Start(ctx context.Context) error

	// Execute runs cmd and blocks until its response arrives or ctx ends.
	// sc is a snapshot of the session context at dispatch time.
	Execute(ctx context.Context, cmd domain.Command, sc domain.SessionContext) (domain.Response, error)

	// State reports the lifecycle state.
	State() domain.State

	// Close releases the strategy. In-flight commands are abandoned without a response.
	Close() error
}
