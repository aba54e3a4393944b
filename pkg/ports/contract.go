package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunExecutorContract runs a suite of tests to verify that a started Executor
// adheres to the defined interface contract. The executor must answer every kind.
func RunExecutorContract(t *testing.T, exec Executor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("Ready After Start", func(t *testing.T) {
		assert.True(t, exec.State().Ready(), "state %s should accept commands", exec.State())
	})

	t.Run("Echoes ID And Kind", func(t *testing.T) {
		for _, kind := range domain.Kinds() {
			payload, err := domain.NewPayload(kind)
			require.NoError(t, err)

			cmd := domain.NewCommand(payload)
			resp, err := exec.Execute(ctx, cmd, domain.SessionContext{})
			require.NoError(t, err, "kind %s", kind)
			assert.Equal(t, cmd.ID, resp.ID, "kind %s", kind)
			assert.Equal(t, kind, resp.Kind)
			assert.True(t, resp.IsResponse, "responses must carry the response flag")
		}
	})

	t.Run("Honours Cancelled Context", func(t *testing.T) {
		cctx, ccancel := context.WithCancel(ctx)
		ccancel()

		_, err := exec.Execute(cctx, domain.NewCommand(domain.GetSelection{}), domain.SessionContext{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
