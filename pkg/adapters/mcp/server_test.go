package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/pkg/adapters/simulated"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *designbridge.Bridge) {
	t.Helper()
	bridge := designbridge.New(designbridge.WithExecutor(simulated.New(simulated.WithDelay(0))))
	require.NoError(t, bridge.Start(context.Background()))
	t.Cleanup(func() { bridge.Close() })
	return NewServer(bridge), bridge
}

func call(t *testing.T, s *Server, kind domain.Kind, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := s.handler(kind)(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	tc, _ := res.Content[0].(mcp.TextContent)
	return tc.Text
}

func TestCatalog_OneToolPerKind(t *testing.T) {
	seen := map[domain.Kind]string{}
	for _, spec := range Catalog() {
		_, dup := seen[spec.Kind]
		assert.False(t, dup, "kind %s mapped twice", spec.Kind)
		seen[spec.Kind] = spec.Name
		assert.Equal(t, strings.ToLower(string(spec.Kind)), spec.Name)
	}
	assert.Len(t, seen, len(domain.Kinds()))
}

func TestServer_CreateThenAdd(t *testing.T) {
	s, bridge := newTestServer(t)

	res := call(t, s, domain.KindCreateWireframe, map[string]any{
		"description": "Landing",
		"pages":       []any{"Home", "About"},
	})
	assert.False(t, res.IsError)
	assert.Contains(t, text(res), `Created wireframe "Landing"`)
	assert.Contains(t, text(res), "with 2 page(s)")

	res = call(t, s, domain.KindAddElement, map[string]any{"elementType": "button"})
	assert.False(t, res.IsError)
	assert.Contains(t, text(res), bridge.SessionContext().ActivePageID)
}

func TestServer_SanitizesArguments(t *testing.T) {
	s, bridge := newTestServer(t)

	res := call(t, s, domain.KindCreateWireframe, map[string]any{"description": "Land\x1bing"})
	assert.False(t, res.IsError)
	assert.Equal(t, "Landing", bridge.SessionContext().Wireframes[0].Name)

	res = call(t, s, domain.KindCreateWireframe, map[string]any{"description": "bad \xff"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "arguments rejected")
}

func TestServer_InvalidArguments(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, domain.KindArrangeLayout, map[string]any{"spacing": []any{1, 2}})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "invalid arguments")
}

func TestServer_MutationErrorIsToolError(t *testing.T) {
	s := NewServer(rejectingBridge{})

	res := call(t, s, domain.KindModifyElement, map[string]any{"elementId": "1:2"})
	assert.True(t, res.IsError)
	assert.Equal(t, "MODIFY_ELEMENT failed: Node not found", text(res))
}

func TestServer_SessionResource(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s, domain.KindCreateWireframe, map[string]any{"description": "Landing"})

	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"design://session"}}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `\"state\":\"simulated\"`)
	assert.Contains(t, string(raw), `Landing`)
}

func TestServer_ListsTools(t *testing.T) {
	s, _ := newTestServer(t)

	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, spec := range Catalog() {
		assert.Contains(t, string(raw), `"`+spec.Name+`"`)
	}
}

type rejectingBridge struct{}

func (rejectingBridge) Send(_ context.Context, cmd domain.Command) (domain.Response, error) {
	resp := domain.Failed(cmd, "Node not found")
	return resp, &domain.MutationError{Kind: cmd.Kind(), CommandID: cmd.ID, Message: resp.Error}
}

func (rejectingBridge) SessionContext() domain.SessionContext { return domain.SessionContext{} }
func (rejectingBridge) State() domain.State                   { return domain.StateHostConnected }
