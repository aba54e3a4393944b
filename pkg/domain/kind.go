package domain

import "fmt"

// Kind identifies a command. The set is closed.
type Kind string

const (
	KindCreateWireframe Kind = "CREATE_WIREFRAME"
	KindAddElement      Kind = "ADD_ELEMENT"
	KindStyleElement    Kind = "STYLE_ELEMENT"
	KindModifyElement   Kind = "MODIFY_ELEMENT"
	KindArrangeLayout   Kind = "ARRANGE_LAYOUT"
	KindExportDesign    Kind = "EXPORT_DESIGN"
	KindGetSelection    Kind = "GET_SELECTION"
	KindGetCurrentPage  Kind = "GET_CURRENT_PAGE"
)

var kinds = []Kind{
	KindCreateWireframe,
	KindAddElement,
	KindStyleElement,
	KindModifyElement,
	KindArrangeLayout,
	KindExportDesign,
	KindGetSelection,
	KindGetCurrentPage,
}

// Kinds returns every supported kind in protocol order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k belongs to the protocol.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", &ProtocolError{Op: "parse kind", Err: fmt.Errorf("%w: %q", ErrUnknownKind, s)}
	}
	return k, nil
}

func (k Kind) String() string {
	return string(k)
}
