package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned when a command kind is outside the protocol.
	ErrUnknownKind = errors.New("unknown command kind")

	// ErrHostDisconnected is returned to commands in flight when the host link closes.
	ErrHostDisconnected = errors.New("host disconnected")

	// ErrHostToolNotFound is returned by launchers when the host cannot be located.
	ErrHostToolNotFound = errors.New("host tool not found")

	// ErrLaunchFailed is returned by launchers when the host was located but could not start.
	ErrLaunchFailed = errors.New("host launch failed")

	// ErrNotStarted is returned when dispatching before the executor was started.
	ErrNotStarted = errors.New("executor not started")

	// ErrBridgeClosed is returned after the bridge has been shut down.
	ErrBridgeClosed = errors.New("bridge closed")
)

// ProtocolError reports a malformed message or an unknown kind.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DispatchError reports a failure to hand a command to the host.
type DispatchError struct {
	CommandID string
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.CommandID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// MutationError carries a host-side failure. Error returns the host text verbatim.
type MutationError struct {
	Kind      Kind
	CommandID string
	Message   string
}

func (e *MutationError) Error() string {
	return e.Message
}
