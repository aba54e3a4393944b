package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
)

// Event is the JSON body of a /events message.
type Event struct {
	Timestamp  time.Time    `json:"timestamp"`
	CommandID  string       `json:"commandId"`
	Kind       domain.Kind  `json:"kind"`
	State      domain.State `json:"state"`
	DurationMS int64        `json:"durationMs"`
	Success    bool         `json:"success"`
	Error      string       `json:"error,omitempty"`
}

// StreamManager fans settled commands out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel. Call the returned func to unsubscribe.
func (sm *StreamManager) Subscribe() (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast delivers ev to every subscriber, dropping it for slow ones.
func (sm *StreamManager) Broadcast(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- ev:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping event", "command_id", ev.CommandID)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every settled command, then call next.
func (sm *StreamManager) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: next.OnDispatch,
		OnSettle: func(ctx context.Context, e *domain.CommandEvent) {
			ev := Event{
				Timestamp:  e.Timestamp,
				CommandID:  e.CommandID,
				Kind:       e.Kind,
				State:      e.State,
				DurationMS: e.Duration.Milliseconds(),
				Success:    e.Success && e.Err == nil,
			}
			if e.Err != nil {
				ev.Error = e.Err.Error()
			}
			sm.Broadcast(ev)
			if next.OnSettle != nil {
				next.OnSettle(ctx, e)
			}
		},
	}
}

func (ev Event) marshal() string {
	b, _ := json.Marshal(ev)
	return string(b)
}
