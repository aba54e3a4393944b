package mcp

import (
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolSpec ties a tool name to the command kind it issues.
type ToolSpec struct {
	Name        string
	Kind        domain.Kind
	Description string
	options     []mcp.ToolOption
}

// Tool builds the MCP definition.
func (t ToolSpec) Tool() mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(t.Description)}, t.options...)
	return mcp.NewTool(t.Name, opts...)
}

var stringItems = mcp.Items(map[string]any{"type": "string"})

// Catalog lists every tool, one per command kind.
func Catalog() []ToolSpec {
	return []ToolSpec{
		{
			Name: "create_wireframe",
			Kind: domain.KindCreateWireframe,
			Description: "Create a wireframe frame with one page per entry of pages. " +
				"The new wireframe and its first page become the active context.",
			options: []mcp.ToolOption{
				mcp.WithString("description", mcp.Required(), mcp.Description("What the wireframe is for, used as its name")),
				mcp.WithArray("pages", stringItems, mcp.Description("Page names, in order (default: a single Home page)")),
				mcp.WithString("style", mcp.Description("Visual style hint, e.g. minimal or corporate")),
				mcp.WithNumber("width", mcp.Description("Frame width in pixels")),
				mcp.WithNumber("height", mcp.Description("Frame height in pixels")),
			},
		},
		{
			Name:        "add_element",
			Kind:        domain.KindAddElement,
			Description: "Add an element. Without parent it is added to the active page.",
			options: []mcp.ToolOption{
				mcp.WithString("elementType", mcp.Required(),
					mcp.Enum("frame", "rectangle", "ellipse", "text", "button", "input", "image", "line", "component"),
					mcp.Description("Kind of element to create")),
				mcp.WithString("parent", mcp.Description("Id of the page or frame to add to")),
				mcp.WithString("name", mcp.Description("Layer name")),
				mcp.WithObject("properties", mcp.Description("Initial properties such as text, width, height, x, y")),
			},
		},
		{
			Name:        "style_element",
			Kind:        domain.KindStyleElement,
			Description: "Apply fills, strokes, effects or typography. Without elementId the active page is styled.",
			options: []mcp.ToolOption{
				mcp.WithString("elementId", mcp.Description("Id of the element to style")),
				mcp.WithObject("styles", mcp.Required(), mcp.Description("Style properties, e.g. fill, stroke, cornerRadius, fontSize")),
			},
		},
		{
			Name:        "modify_element",
			Kind:        domain.KindModifyElement,
			Description: "Change size, position, text or other structural properties of an element.",
			options: []mcp.ToolOption{
				mcp.WithString("elementId", mcp.Required(), mcp.Description("Id of the element to modify")),
				mcp.WithObject("changes", mcp.Required(), mcp.Description("Properties to change")),
			},
		},
		{
			Name:        "arrange_layout",
			Kind:        domain.KindArrangeLayout,
			Description: "Apply an auto layout to the children of a frame.",
			options: []mcp.ToolOption{
				mcp.WithString("parentId", mcp.Required(), mcp.Description("Id of the frame whose children are arranged")),
				mcp.WithString("layout", mcp.Enum("horizontal", "vertical", "grid"), mcp.Description("Layout direction (default vertical)")),
				mcp.WithNumber("spacing", mcp.Description("Gap between children in pixels")),
				mcp.WithNumber("padding", mcp.Description("Inner padding in pixels")),
			},
		},
		{
			Name:        "export_design",
			Kind:        domain.KindExportDesign,
			Description: "Export a node. Without nodeId the active wireframe is exported.",
			options: []mcp.ToolOption{
				mcp.WithString("nodeId", mcp.Description("Id of the node to export")),
				mcp.WithString("format", mcp.Enum("PNG", "JPG", "SVG", "PDF"), mcp.Description("Output format (default PNG)")),
				mcp.WithNumber("scale", mcp.Description("Scale factor (default 1)")),
			},
		},
		{
			Name:        "get_selection",
			Kind:        domain.KindGetSelection,
			Description: "Describe the elements currently selected in the editor.",
		},
		{
			Name:        "get_current_page",
			Kind:        domain.KindGetCurrentPage,
			Description: "Describe the page currently open in the editor.",
		},
	}
}
