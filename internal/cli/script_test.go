package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const landingScript = `
name: landing
steps:
  - kind: create_wireframe
    args:
      description: Landing
      pages: [Home, Pricing]
  - kind: add_element
    args:
      elementType: button
      name: Sign up
      properties:
        width: 120
  - kind: get-current-page
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(landingScript))
	require.NoError(t, err)
	assert.Equal(t, "landing", s.Name)

	cmds := s.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, domain.KindCreateWireframe, cmds[0].Kind())
	assert.Equal(t, []string{"Home", "Pricing"}, cmds[0].Payload.(domain.CreateWireframe).Pages)
	assert.Equal(t, "Sign up", cmds[1].Payload.(domain.AddElement).Name)
	assert.Equal(t, domain.KindGetCurrentPage, cmds[2].Kind())
}

func TestParseScript_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"Not YAML", "steps: [unterminated"},
		{"No Steps", "name: empty\n"},
		{"Unknown Kind", "steps:\n  - kind: delete_everything\n"},
		{"Bad Args", "steps:\n  - kind: create_wireframe\n    args:\n      width: wide\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.script))
			assert.Error(t, err)
		})
	}
}

func TestRunScript_SharesSessionContext(t *testing.T) {
	b := newSimulatedBridge(t)
	path := filepath.Join(t.TempDir(), "landing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(landingScript), 0644))

	s, err := LoadScript(path)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, RunScript(context.Background(), b, s, Printer{Out: &out}))

	sc := b.SessionContext()
	require.Len(t, sc.Wireframes, 1)
	assert.Len(t, sc.Wireframes[0].PageIDs, 2)
	assert.Equal(t, sc.Wireframes[0].PageIDs[0], sc.ActivePageID)

	// The button landed on the page the wireframe step opened.
	assert.Contains(t, out.String(), "to "+sc.ActivePageID)

	assert.Contains(t, out.String(), "Step 3")
	assert.Contains(t, out.String(), `Script "landing" finished: 3 step(s).`)
}

type scriptedSender struct {
	failAt int
	calls  int
}

func (s *scriptedSender) Send(_ context.Context, cmd domain.Command) (domain.Response, error) {
	s.calls++
	if s.calls == s.failAt {
		return domain.Failed(cmd, "rejected"), &domain.MutationError{Kind: cmd.Kind(), CommandID: cmd.ID, Message: "rejected"}
	}
	return domain.Succeeded(cmd, nil), nil
}

func TestRunScript_StopsOnFailure(t *testing.T) {
	s, err := ParseScript([]byte(landingScript))
	require.NoError(t, err)

	sender := &scriptedSender{failAt: 2}
	err = RunScript(context.Background(), sender, s, Printer{Out: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "step 2 (ADD_ELEMENT)")
	assert.Equal(t, 2, sender.calls)
}

func TestRunScript_ContinueOnError(t *testing.T) {
	s, err := ParseScript([]byte("continue_on_error: true\n" + landingScript))
	require.NoError(t, err)

	sender := &scriptedSender{failAt: 1}
	err = RunScript(context.Background(), sender, s, Printer{Out: &bytes.Buffer{}, JSON: true})
	assert.EqualError(t, err, "1 of 3 steps failed")
	assert.Equal(t, 3, sender.calls)
}

func TestRunScript_Cancelled(t *testing.T) {
	s, err := ParseScript([]byte(landingScript))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &scriptedSender{}
	assert.NoError(t, RunScript(ctx, sender, s, Printer{Out: &bytes.Buffer{}}))
	assert.Zero(t, sender.calls)
}
