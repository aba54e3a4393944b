package domain

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// Command is a tagged payload with a correlation id.
type Command struct {
	ID      string
	Payload Payload
}

// wireCommand is the JSON shape written to the host, one object per line.
type wireCommand struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	ID      string          `json:"id"`
}

var idCounter atomic.Uint64

// NewCommandID returns an id combining the wall clock with a process-wide counter.
// The counter alone guarantees uniqueness; the timestamp keeps ids readable in logs.
func NewCommandID() string {
	n := idCounter.Add(1)
	return fmt.Sprintf("cmd_%d_%d", time.Now().UnixMilli(), n)
}

// NewCommand wraps payload with a fresh id.
func NewCommand(payload Payload) Command {
	return Command{ID: NewCommandID(), Payload: payload}
}

// Kind returns the kind of the carried payload.
func (c Command) Kind() Kind {
	if c.Payload == nil {
		return ""
	}
	return c.Payload.Kind()
}

// MarshalJSON encodes the command in its wire form.
func (c Command) MarshalJSON() ([]byte, error) {
	if c.Payload == nil {
		return nil, &ProtocolError{Op: "encode command", Err: fmt.Errorf("command %s has no payload", c.ID)}
	}
	raw, err := json.Marshal(c.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return json.Marshal(wireCommand{Type: c.Payload.Kind(), Payload: raw, ID: c.ID})
}

// UnmarshalJSON decodes the wire form, resolving the payload variant from "type".
func (c *Command) UnmarshalJSON(data []byte) error {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return &ProtocolError{Op: "decode command", Err: err}
	}
	if !w.Type.Valid() {
		return &ProtocolError{Op: "decode command", Err: fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)}
	}
	p, err := DecodePayload(w.Type, w.Payload)
	if err != nil {
		return err
	}
	c.ID = w.ID
	c.Payload = p
	return nil
}
