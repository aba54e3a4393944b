package domain

import "time"

// Wireframe is a frame created during the session.
type Wireframe struct {
	ID        string    `json:"id" mapstructure:"id"`
	Name      string    `json:"name" mapstructure:"name"`
	PageIDs   []string  `json:"pageIds" mapstructure:"pageIds"`
	CreatedAt time.Time `json:"createdAt" mapstructure:"createdAt"`
}

// SessionContext is the ambient target of commands that do not name one.
// An empty id means "none".
type SessionContext struct {
	ActiveWireframeID string      `json:"activeWireframeId,omitempty"`
	ActivePageID      string      `json:"activePageId,omitempty"`
	Wireframes        []Wireframe `json:"wireframes"`
}

// Clone returns a deep copy.
func (c SessionContext) Clone() SessionContext {
	out := SessionContext{
		ActiveWireframeID: c.ActiveWireframeID,
		ActivePageID:      c.ActivePageID,
		Wireframes:        make([]Wireframe, len(c.Wireframes)),
	}
	for i, wf := range c.Wireframes {
		wf.PageIDs = append([]string(nil), wf.PageIDs...)
		out.Wireframes[i] = wf
	}
	return out
}

// Wireframe looks up a wireframe by id.
func (c SessionContext) Wireframe(id string) (Wireframe, bool) {
	for _, wf := range c.Wireframes {
		if wf.ID == id {
			return wf, true
		}
	}
	return Wireframe{}, false
}
