package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/designbridge/pkg/adapters/mcp"
)

// CatalogMarkdown describes every MCP tool and its arguments.
func CatalogMarkdown() string {
	var b strings.Builder
	b.WriteString("# Tools\n\n")
	for _, spec := range mcp.Catalog() {
		tool := spec.Tool()
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", tool.Name, spec.Description)
		fmt.Fprintf(&b, "Command kind: `%s`\n\n", spec.Kind)

		required := map[string]bool{}
		for _, name := range tool.InputSchema.Required {
			required[name] = true
		}
		names := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			names = append(names, name)
		}
		if len(names) == 0 {
			b.WriteString("No arguments.\n\n")
			continue
		}
		slices.Sort(names)
		for _, name := range names {
			prop, _ := tool.InputSchema.Properties[name].(map[string]any)
			line := fmt.Sprintf("- `%s` (%v)", name, prop["type"])
			if required[name] {
				line += " **required**"
			}
			if desc, ok := prop["description"].(string); ok && desc != "" {
				line += ": " + desc
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
