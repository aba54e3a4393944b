package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/pkg/adapters/simulated"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulatedBridge(t *testing.T) *designbridge.Bridge {
	t.Helper()
	b := designbridge.New(designbridge.WithExecutor(simulated.New(simulated.WithDelay(0))))
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { b.Close() })
	return b
}

func TestNormalizeKind(t *testing.T) {
	for _, in := range []string{"CREATE_WIREFRAME", "create_wireframe", "create-wireframe", " Create-Wireframe "} {
		k, err := NormalizeKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, domain.KindCreateWireframe, k)
	}
	_, err := NormalizeKind("delete_everything")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("add_element", `{"elementType":"button","name":"Buy","properties":{"width":"120"}}`)
	require.NoError(t, err)
	el, ok := cmd.Payload.(domain.AddElement)
	require.True(t, ok)
	assert.Equal(t, "button", el.ElementType)
	assert.Equal(t, "Buy", el.Name)
	assert.NotEmpty(t, cmd.ID)

	cmd, err = ParseCommand("get-selection", "")
	require.NoError(t, err)
	assert.Equal(t, domain.KindGetSelection, cmd.Kind())

	_, err = ParseCommand("add_element", `{not json`)
	assert.Error(t, err)

	cmd, err = ParseCommand("add_element", `{"name":"bad\u0000name"}`)
	require.NoError(t, err)
	assert.Equal(t, "badname", cmd.Payload.(domain.AddElement).Name)

	t.Setenv("DESIGNBRIDGE_MAX_INPUT_SIZE", "8")
	_, err = ParseCommand("add_element", `{"name":"far too long for the limit"}`)
	assert.Error(t, err)
}

func TestSend_PrintsSummary(t *testing.T) {
	b := newSimulatedBridge(t)
	cmd, err := ParseCommand("create_wireframe", `{"description":"Landing","pages":["Home","About"]}`)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Send(context.Background(), b, cmd, Printer{Out: &out}))
	assert.Contains(t, out.String(), `Created wireframe "Landing"`)
	assert.Contains(t, out.String(), "```json")
}

func TestSend_JSON(t *testing.T) {
	b := newSimulatedBridge(t)
	cmd, err := ParseCommand("get_current_page", "")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Send(context.Background(), b, cmd, Printer{Out: &out, JSON: true}))

	var got result
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.NotNil(t, got.Response)
	assert.Equal(t, cmd.ID, got.Response.ID)
	assert.Empty(t, got.Error)
}

type failingSender struct{ err error }

func (f failingSender) Send(_ context.Context, cmd domain.Command) (domain.Response, error) {
	var merr *domain.MutationError
	if errors.As(f.err, &merr) {
		return domain.Failed(cmd, "%s", merr.Message), f.err
	}
	return domain.Response{}, f.err
}

func TestSend_Errors(t *testing.T) {
	cmd := domain.NewCommand(domain.StyleElement{ElementID: "missing"})

	t.Run("Mutation", func(t *testing.T) {
		var out bytes.Buffer
		merr := &domain.MutationError{Kind: cmd.Kind(), CommandID: cmd.ID, Message: "node not found"}
		err := Send(context.Background(), failingSender{merr}, cmd, Printer{Out: &out})
		assert.ErrorAs(t, err, &merr)
		assert.Contains(t, out.String(), "STYLE_ELEMENT failed: node not found")
	})

	t.Run("Transport", func(t *testing.T) {
		var out bytes.Buffer
		err := Send(context.Background(), failingSender{domain.ErrHostDisconnected}, cmd, Printer{Out: &out})
		assert.ErrorIs(t, err, domain.ErrHostDisconnected)
		assert.Contains(t, out.String(), "**Error:**")
	})

	t.Run("Interrupted", func(t *testing.T) {
		var out bytes.Buffer
		err := Send(context.Background(), failingSender{context.Canceled}, cmd, Printer{Out: &out})
		assert.NoError(t, err)
	})
}

func TestSummaryMarkdown(t *testing.T) {
	assert.Equal(t, "Done.\n", summaryMarkdown("Done."))
	assert.Equal(t, "Done.\n\n```json\n{\n  \"a\": 1\n}\n```\n", summaryMarkdown("Done.\n\n{\n  \"a\": 1\n}"))
}

func TestCatalogMarkdown(t *testing.T) {
	md := CatalogMarkdown()
	assert.Contains(t, md, "## create_wireframe")
	assert.Contains(t, md, "`description` (string) **required**")
	assert.Contains(t, md, "## get_selection")
	assert.Contains(t, md, "No arguments.")
}
