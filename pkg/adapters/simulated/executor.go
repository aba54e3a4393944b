// Package simulated implements an execution strategy that fabricates host-shaped
// responses locally, so callers can develop against the protocol without a host.
package simulated

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/designbridge/internal/logging"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/ports"
	"github.com/google/uuid"
)

// DefaultDelay keeps callers on their asynchronous code paths.
const DefaultDelay = 150 * time.Millisecond

// Executor synthesizes responses. Ids from the session context are reused where a
// host would reuse them, so sequences of simulated calls stay self-consistent.
type Executor struct {
	delay  time.Duration
	newID  func() string
	logger *slog.Logger

	mu    sync.RWMutex
	state domain.State
}

var _ ports.Executor = (*Executor)(nil)

// Option configures the Executor.
type Option func(*Executor)

// WithDelay sets the artificial latency of every response.
func WithDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.delay = d
	}
}

// WithIDGenerator overrides how new node ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Executor) {
		e.newID = fn
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates a simulated Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		delay:  DefaultDelay,
		newID:  func() string { return uuid.NewString()[:8] },
		logger: logging.NewNop(),
		state:  domain.StateUninitialized,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start moves the executor to the Simulated state.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domain.StateSimulated
	e.logger.Info("Simulated mode active: responses are synthesized locally", "delay", e.delay)
	return nil
}

// State reports the lifecycle state.
func (e *Executor) State() domain.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Close is a no-op; there is nothing to release.
func (e *Executor) Close() error {
	return nil
}

// Execute waits for the artificial delay and returns a synthesized response.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, sc domain.SessionContext) (domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return domain.Response{}, err
	}
	if !e.State().Ready() {
		return domain.Response{}, domain.ErrNotStarted
	}

	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.Response{}, ctx.Err()
		}
	}

	data, err := e.synthesize(cmd, sc)
	if err != nil {
		return domain.Response{}, err
	}
	data[domain.KeySimulated] = true

	e.logger.Debug("Simulated response", "command_id", cmd.ID, "kind", cmd.Kind())
	return domain.Succeeded(cmd, data), nil
}

func (e *Executor) synthesize(cmd domain.Command, sc domain.SessionContext) (domain.Data, error) {
	switch p := cmd.Payload.(type) {
	case domain.CreateWireframe:
		return e.createWireframe(p, sc), nil

	case domain.AddElement:
		elementType := p.ElementType
		if elementType == "" {
			elementType = "frame"
		}
		name := p.Name
		if name == "" {
			first, size := utf8.DecodeRuneInString(elementType)
			name = string(unicode.ToUpper(first)) + elementType[size:]
		}
		return domain.Data{
			"elementId":   e.nodeID(),
			"elementType": elementType,
			"name":        name,
			"parentId":    p.Parent,
		}, nil

	case domain.StyleElement:
		return domain.Data{
			"elementId":     p.ElementID,
			"appliedStyles": sortedKeys(p.Styles),
		}, nil

	case domain.ModifyElement:
		return domain.Data{
			"elementId": p.ElementID,
			"modified":  sortedKeys(p.Changes),
		}, nil

	case domain.ArrangeLayout:
		layout := p.Layout
		if layout == "" {
			layout = "vertical"
		}
		return domain.Data{
			"parentId": p.ParentID,
			"layout":   layout,
			"spacing":  p.Spacing,
			"padding":  p.Padding,
		}, nil

	case domain.ExportDesign:
		format := strings.ToUpper(p.Format)
		if format == "" {
			format = "PNG"
		}
		nodeID := p.NodeID
		if nodeID == "" {
			nodeID = sc.ActiveWireframeID
		}
		scale := p.Scale
		if scale == 0 {
			scale = 1
		}
		return domain.Data{
			"nodeId":   nodeID,
			"format":   format,
			"scale":    scale,
			"fileName": fmt.Sprintf("export-%s.%s", e.nodeID(), strings.ToLower(format)),
		}, nil

	case domain.GetSelection:
		return domain.Data{
			"selection": []any{},
			"count":     0,
		}, nil

	case domain.GetCurrentPage:
		pageID := sc.ActivePageID
		if pageID == "" {
			pageID = "page-1"
		}
		data := domain.Data{
			"pageId": pageID,
			"name":   pageName(sc, pageID),
		}
		if sc.ActivePageID != "" {
			data[domain.KeyActivePageID] = sc.ActivePageID
		}
		return data, nil
	}

	return nil, &domain.ProtocolError{
		Op:  "simulate",
		Err: fmt.Errorf("%w: %q", domain.ErrUnknownKind, cmd.Kind()),
	}
}

func (e *Executor) createWireframe(p domain.CreateWireframe, sc domain.SessionContext) domain.Data {
	wireframeID := sc.ActiveWireframeID
	if wireframeID == "" {
		wireframeID = "wireframe-" + e.nodeID()
	}

	pages := p.Pages
	if len(pages) == 0 {
		pages = []string{"Home"}
	}
	pageIDs := make([]string, len(pages))
	for i := range pages {
		pageIDs[i] = fmt.Sprintf("%s-page-%d", wireframeID, i+1)
	}

	name := p.Description
	if name == "" {
		name = "Wireframe"
	}
	return domain.Data{
		domain.KeyWireframeID:       wireframeID,
		domain.KeyPageIDs:           pageIDs,
		domain.KeyName:              name,
		"pages":                     pages,
		domain.KeyActiveWireframeID: wireframeID,
		domain.KeyActivePageID:      pageIDs[0],
	}
}

func (e *Executor) nodeID() string {
	return e.newID()
}

func pageName(sc domain.SessionContext, pageID string) string {
	for _, wf := range sc.Wireframes {
		for i, id := range wf.PageIDs {
			if id == pageID {
				return fmt.Sprintf("%s / Page %d", wf.Name, i+1)
			}
		}
	}
	return "Page 1"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
