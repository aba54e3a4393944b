package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is the typed body of a command. Each kind has exactly one variant;
// the set is sealed by the unexported marker method.
type Payload interface {
	Kind() Kind
	payload()
}

// Querier is implemented by payloads that only read the document.
type Querier interface {
	IsQuery() bool
}

// CreateWireframe creates a new frame with one page per entry of Pages.
type CreateWireframe struct {
	Description string   `json:"description" yaml:"description" mapstructure:"description"`
	Pages       []string `json:"pages,omitempty" yaml:"pages,omitempty" mapstructure:"pages"`
	Style       string   `json:"style,omitempty" yaml:"style,omitempty" mapstructure:"style"`
	Width       float64  `json:"width,omitempty" yaml:"width,omitempty" mapstructure:"width"`
	Height      float64  `json:"height,omitempty" yaml:"height,omitempty" mapstructure:"height"`
}

// AddElement inserts an element under Parent (a page or frame id).
type AddElement struct {
	ElementType string         `json:"elementType" yaml:"elementType" mapstructure:"elementType"`
	Parent      string         `json:"parent,omitempty" yaml:"parent,omitempty" mapstructure:"parent"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Properties  map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
}

// StyleElement applies visual styles to ElementID.
type StyleElement struct {
	ElementID string         `json:"elementId,omitempty" yaml:"elementId,omitempty" mapstructure:"elementId"`
	Styles    map[string]any `json:"styles,omitempty" yaml:"styles,omitempty" mapstructure:"styles"`
}

// ModifyElement changes structural properties (size, position, text) of ElementID.
type ModifyElement struct {
	ElementID string         `json:"elementId" yaml:"elementId" mapstructure:"elementId"`
	Changes   map[string]any `json:"changes,omitempty" yaml:"changes,omitempty" mapstructure:"changes"`
}

// ArrangeLayout applies an auto layout to the children of ParentID.
type ArrangeLayout struct {
	ParentID string  `json:"parentId" yaml:"parentId" mapstructure:"parentId"`
	Layout   string  `json:"layout" yaml:"layout" mapstructure:"layout"` // horizontal, vertical, grid
	Spacing  float64 `json:"spacing,omitempty" yaml:"spacing,omitempty" mapstructure:"spacing"`
	Padding  float64 `json:"padding,omitempty" yaml:"padding,omitempty" mapstructure:"padding"`
}

// ExportDesign renders NodeID to an image or document format.
type ExportDesign struct {
	NodeID string  `json:"nodeId,omitempty" yaml:"nodeId,omitempty" mapstructure:"nodeId"`
	Format string  `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"` // PNG, JPG, SVG, PDF
	Scale  float64 `json:"scale,omitempty" yaml:"scale,omitempty" mapstructure:"scale"`
}

// GetSelection reads the current selection.
type GetSelection struct{}

// GetCurrentPage reads the page open in the editor.
type GetCurrentPage struct{}

func (CreateWireframe) Kind() Kind { return KindCreateWireframe }
func (AddElement) Kind() Kind      { return KindAddElement }
func (StyleElement) Kind() Kind    { return KindStyleElement }
func (ModifyElement) Kind() Kind   { return KindModifyElement }
func (ArrangeLayout) Kind() Kind   { return KindArrangeLayout }
func (ExportDesign) Kind() Kind    { return KindExportDesign }
func (GetSelection) Kind() Kind    { return KindGetSelection }
func (GetCurrentPage) Kind() Kind  { return KindGetCurrentPage }

func (CreateWireframe) payload() {}
func (AddElement) payload()      {}
func (StyleElement) payload()    {}
func (ModifyElement) payload()   {}
func (ArrangeLayout) payload()   {}
func (ExportDesign) payload()    {}
func (GetSelection) payload()    {}
func (GetCurrentPage) payload()  {}

func (GetSelection) IsQuery() bool   { return true }
func (GetCurrentPage) IsQuery() bool { return true }

// IsQuery reports whether p only reads the document.
func IsQuery(p Payload) bool {
	q, ok := p.(Querier)
	return ok && q.IsQuery()
}

// NewPayload returns the zero value variant for kind.
func NewPayload(kind Kind) (Payload, error) {
	switch kind {
	case KindCreateWireframe:
		return CreateWireframe{}, nil
	case KindAddElement:
		return AddElement{}, nil
	case KindStyleElement:
		return StyleElement{}, nil
	case KindModifyElement:
		return ModifyElement{}, nil
	case KindArrangeLayout:
		return ArrangeLayout{}, nil
	case KindExportDesign:
		return ExportDesign{}, nil
	case KindGetSelection:
		return GetSelection{}, nil
	case KindGetCurrentPage:
		return GetCurrentPage{}, nil
	}
	return nil, &ProtocolError{Op: "new payload", Err: fmt.Errorf("%w: %q", ErrUnknownKind, kind)}
}

// DecodePayload decodes raw JSON into the variant for kind.
// An empty or null body decodes to the zero variant.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	switch kind {
	case KindCreateWireframe:
		return decodeInto[CreateWireframe](raw)
	case KindAddElement:
		return decodeInto[AddElement](raw)
	case KindStyleElement:
		return decodeInto[StyleElement](raw)
	case KindModifyElement:
		return decodeInto[ModifyElement](raw)
	case KindArrangeLayout:
		return decodeInto[ArrangeLayout](raw)
	case KindExportDesign:
		return decodeInto[ExportDesign](raw)
	case KindGetSelection:
		return decodeInto[GetSelection](raw)
	case KindGetCurrentPage:
		return decodeInto[GetCurrentPage](raw)
	}
	return nil, &ProtocolError{Op: "decode payload", Err: fmt.Errorf("%w: %q", ErrUnknownKind, kind)}
}

func decodeInto[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if len(raw) == 0 || string(raw) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &ProtocolError{Op: "decode payload", Err: err}
	}
	return p, nil
}
