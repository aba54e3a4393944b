package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// PayloadFromMap decodes loosely typed arguments (tool calls, YAML scripts) into the
// variant for kind. Numbers given as strings are converted and unknown keys are ignored.
func PayloadFromMap(kind Kind, args map[string]any) (Payload, error) {
	switch kind {
	case KindCreateWireframe:
		return decodeMapInto[CreateWireframe](args)
	case KindAddElement:
		return decodeMapInto[AddElement](args)
	case KindStyleElement:
		return decodeMapInto[StyleElement](args)
	case KindModifyElement:
		return decodeMapInto[ModifyElement](args)
	case KindArrangeLayout:
		return decodeMapInto[ArrangeLayout](args)
	case KindExportDesign:
		return decodeMapInto[ExportDesign](args)
	case KindGetSelection:
		return GetSelection{}, nil
	case KindGetCurrentPage:
		return GetCurrentPage{}, nil
	}
	return nil, &ProtocolError{Op: "decode arguments", Err: fmt.Errorf("%w: %q", ErrUnknownKind, kind)}
}

func decodeMapInto[T Payload](args map[string]any) (Payload, error) {
	var p T
	if len(args) == 0 {
		return p, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(args); err != nil {
		return nil, &ProtocolError{Op: "decode arguments", Err: err}
	}
	return p, nil
}
