package websocket_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aretw0/designbridge/pkg/adapters/host"
	bridgews "github.com/aretw0/designbridge/pkg/adapters/websocket"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/ports"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plugin dials the bridge and answers commands until the connection drops.
// An export in the "hangup" format makes it drop the connection instead.
func plugin(t *testing.T, l *bridgews.Launcher) <-chan struct{} {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+l.Addr()+bridgews.DefaultPath, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd domain.Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			if p, ok := cmd.Payload.(domain.ExportDesign); ok && p.Format == "hangup" {
				return
			}
			data, _ := json.Marshal(domain.Succeeded(cmd, domain.Data{"via": "plugin"}))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()
	return done
}

func listening(t *testing.T, opts ...bridgews.Option) *bridgews.Launcher {
	t.Helper()
	l := bridgews.NewLauncher(append([]bridgews.Option{bridgews.WithAddr("127.0.0.1:0")}, opts...)...)
	require.NoError(t, l.Listen())
	return l
}

func TestWebsocket_RoundTrip(t *testing.T) {
	l := listening(t)
	done := plugin(t, l)

	exec := host.New(l)
	require.NoError(t, exec.Start(context.Background()))
	require.Equal(t, domain.StateHostConnected, exec.State())

	ports.RunExecutorContract(t, exec)

	resp, err := exec.Execute(context.Background(), domain.NewCommand(domain.GetSelection{}), domain.SessionContext{})
	require.NoError(t, err)
	assert.Equal(t, "plugin", resp.Data["via"])

	require.NoError(t, exec.Close())
	<-done
}

func TestWebsocket_SecondPluginRejected(t *testing.T) {
	l := listening(t)
	done := plugin(t, l)

	exec := host.New(l)
	require.NoError(t, exec.Start(context.Background()))
	defer func() {
		exec.Close()
		<-done
	}()

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+l.Addr()+bridgews.DefaultPath, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWebsocket_PluginHangupRejectsPending(t *testing.T) {
	l := listening(t)
	done := plugin(t, l)

	exec := host.New(l)
	require.NoError(t, exec.Start(context.Background()))
	defer exec.Close()

	_, err := exec.Execute(context.Background(), domain.NewCommand(domain.ExportDesign{Format: "hangup"}), domain.SessionContext{})
	assert.True(t, errors.Is(err, domain.ErrHostDisconnected))
	<-done
}

func TestWebsocket_NoPluginIsNotFound(t *testing.T) {
	l := bridgews.NewLauncher(
		bridgews.WithAddr("127.0.0.1:0"),
		bridgews.WithConnectTimeout(50*time.Millisecond),
	)
	_, err := l.Launch(context.Background())
	assert.True(t, errors.Is(err, domain.ErrHostToolNotFound))
	assert.Empty(t, l.Addr(), "listener is released after the timeout")
}

func TestWebsocket_ImmediateShutdownAfterListen(t *testing.T) {
	// The listener is torn down while its serve goroutine may still be starting.
	for i := 0; i < 20; i++ {
		l := bridgews.NewLauncher(
			bridgews.WithAddr("127.0.0.1:0"),
			bridgews.WithConnectTimeout(time.Millisecond),
		)
		_, err := l.Launch(context.Background())
		require.ErrorIs(t, err, domain.ErrHostToolNotFound)
		assert.Empty(t, l.Addr())
	}
}

func TestWebsocket_LaunchHonoursContext(t *testing.T) {
	l := listening(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Launch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
