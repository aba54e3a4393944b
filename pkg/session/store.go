package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Store holds the session context for the lifetime of the process.
// Callers only ever see copies; the Bridge is the single writer.
type Store struct {
	mu     sync.RWMutex
	ctx    domain.SessionContext
	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for new wireframes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		ctx:    domain.SessionContext{Wireframes: []domain.Wireframe{}},
		now:    time.Now,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a snapshot of the context.
func (s *Store) Get() domain.SessionContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx.Clone()
}

// Reset clears the context.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = domain.SessionContext{Wireframes: []domain.Wireframe{}}
}

// ApplyResponse folds the ids carried by resp into the context.
// It is applied to failed responses too, and replaying the same response
// leaves the context unchanged.
func (s *Store) ApplyResponse(resp domain.Response) {
	if resp.Data == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pageID, hasPage := resp.Data.String(domain.KeyActivePageID)
	if hasPage {
		s.ctx.ActivePageID = pageID
	}
	wireframeID, hasWireframe := resp.Data.String(domain.KeyActiveWireframeID)
	if hasWireframe {
		s.ctx.ActiveWireframeID = wireframeID
	}

	if raw, ok := resp.Data[domain.KeyWireframes]; ok {
		list, err := decodeWireframes(raw)
		if err != nil {
			s.logger.Warn("Ignoring malformed wireframe list",
				"command_id", resp.ID,
				"err", err,
			)
		} else {
			s.ctx.Wireframes = list
		}
	}

	if resp.Kind != domain.KindCreateWireframe {
		return
	}
	id, okID := resp.Data.String(domain.KeyWireframeID)
	pageIDs, okPages := resp.Data.Strings(domain.KeyPageIDs)
	if !okID || id == "" || !okPages {
		return
	}

	s.upsertWireframe(id, resp.Data, pageIDs)

	if !hasWireframe {
		s.ctx.ActiveWireframeID = id
	}
	if !hasPage && len(pageIDs) > 0 {
		s.ctx.ActivePageID = pageIDs[0]
	}
}

// upsertWireframe must be called with s.mu held.
func (s *Store) upsertWireframe(id string, data domain.Data, pageIDs []string) {
	for i := range s.ctx.Wireframes {
		if s.ctx.Wireframes[i].ID == id {
			s.ctx.Wireframes[i].PageIDs = dedupe(pageIDs)
			return
		}
	}

	name, _ := data.String(domain.KeyName)
	if name == "" {
		name = fmt.Sprintf("Wireframe %d", len(s.ctx.Wireframes)+1)
	}
	s.ctx.Wireframes = append(s.ctx.Wireframes, domain.Wireframe{
		ID:        id,
		Name:      name,
		PageIDs:   dedupe(pageIDs),
		CreatedAt: s.now(),
	})
	s.logger.Debug("Wireframe registered", "wireframe_id", id, "pages", len(pageIDs))
}

// Inject fills the default target of commands that benefit from continuity.
// Explicit targets and query commands are returned untouched.
func (s *Store) Inject(cmd domain.Command) domain.Command {
	s.mu.RLock()
	pageID := s.ctx.ActivePageID
	s.mu.RUnlock()

	if pageID == "" {
		return cmd
	}

	switch p := cmd.Payload.(type) {
	case domain.AddElement:
		if p.Parent == "" {
			p.Parent = pageID
			cmd.Payload = p
		}
	case domain.StyleElement:
		if p.ElementID == "" {
			p.ElementID = pageID
			cmd.Payload = p
		}
	}
	return cmd
}

func decodeWireframes(raw any) ([]domain.Wireframe, error) {
	var list []domain.Wireframe
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		Result: &list,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	for i := range list {
		list[i].PageIDs = dedupe(list[i].PageIDs)
	}
	if list == nil {
		list = []domain.Wireframe{}
	}
	return list, nil
}

// dedupe keeps the first occurrence of every id, preserving order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
