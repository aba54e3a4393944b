package domain

import (
	"context"
	"time"
)

// CommandEvent describes a command crossing the bridge.
type CommandEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	CommandID string        `json:"command_id"`
	Kind      Kind          `json:"kind"`
	State     State         `json:"state"`
	Duration  time.Duration `json:"duration,omitempty"`
	Success   bool          `json:"success,omitempty"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for bridge observability.
type LifecycleHooks struct {
	OnDispatch func(context.Context, *CommandEvent)
	OnSettle   func(context.Context, *CommandEvent)
}
