package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Summary renders resp as a short plain-text report followed by its data.
func (r Response) Summary() string {
	var b strings.Builder
	switch {
	case r.Placeholder:
		fmt.Fprintf(&b, "%s was not applied: the host is unavailable, no document change was made.", r.Kind)
	case !r.Success:
		fmt.Fprintf(&b, "%s failed: %s", r.Kind, r.Error)
	default:
		b.WriteString(r.headline())
		if r.Data.Bool(KeySimulated) {
			b.WriteString(" (simulated)")
		}
	}

	if len(r.Data) > 0 {
		if data, err := json.MarshalIndent(r.Data, "", "  "); err == nil {
			b.WriteString("\n\n")
			b.Write(data)
		}
	}
	return b.String()
}

func (r Response) headline() string {
	d := r.Data
	str := func(key string) string {
		s, _ := d.String(key)
		return s
	}

	switch r.Kind {
	case KindCreateWireframe:
		pages, _ := d.Strings(KeyPageIDs)
		return fmt.Sprintf("Created wireframe %q (%s) with %d page(s). Active page: %s.",
			str(KeyName), str(KeyWireframeID), len(pages), str(KeyActivePageID))
	case KindAddElement:
		return fmt.Sprintf("Added %s %q (%s) to %s.", str("elementType"), str("name"), str("elementId"), str("parentId"))
	case KindStyleElement:
		return fmt.Sprintf("Styled element %s.", str("elementId"))
	case KindModifyElement:
		return fmt.Sprintf("Modified element %s.", str("elementId"))
	case KindArrangeLayout:
		return fmt.Sprintf("Arranged children of %s in a %s layout.", str("parentId"), str("layout"))
	case KindExportDesign:
		return fmt.Sprintf("Exported %s as %s.", str("nodeId"), str("format"))
	case KindGetSelection:
		return fmt.Sprintf("%v element(s) selected.", d["count"])
	case KindGetCurrentPage:
		return fmt.Sprintf("Current page: %s (%s).", str("name"), str("pageId"))
	}
	return fmt.Sprintf("%s succeeded.", r.Kind)
}
