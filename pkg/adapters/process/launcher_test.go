package process_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/designbridge/pkg/adapters/host"
	"github.com/aretw0/designbridge/pkg/adapters/process"
	"github.com/aretw0/designbridge/pkg/domain"
	"github.com/aretw0/designbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test: it is the fake host re-executed by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	fmt.Fprintln(os.Stderr, "fake host ready")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var cmd domain.Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			fmt.Fprintln(os.Stdout, "garbage from host")
			continue
		}
		if _, ok := cmd.Payload.(domain.ExportDesign); ok && os.Getenv("HELPER_EXIT_ON_EXPORT") == "1" {
			os.Exit(3)
		}
		resp := domain.Succeeded(cmd, domain.Data{"pid": os.Getpid()})
		data, _ := json.Marshal(resp)
		fmt.Fprintf(os.Stdout, "%s\n", data)
	}
}

func helperConfig(env ...string) process.Config {
	cfg := process.Config{
		Command:     os.Args[0],
		Args:        []string{"-test.run=TestHelperProcess", "--"},
		Environment: map[string]string{"GO_WANT_HELPER_PROCESS": "1"},
	}
	for i := 0; i+1 < len(env); i += 2 {
		cfg.Environment[env[i]] = env[i+1]
	}
	return cfg
}

func TestLauncher_ToolNotFound(t *testing.T) {
	l := process.NewLauncher(process.Config{Command: "designbridge-no-such-host-tool"})
	_, err := l.Launch(context.Background())
	assert.True(t, errors.Is(err, domain.ErrHostToolNotFound))
}

func TestLauncher_LaunchFailed(t *testing.T) {
	l := process.NewLauncher(process.Config{Command: os.Args[0], Dir: filepath.Join(t.TempDir(), "missing")})
	_, err := l.Launch(context.Background())
	assert.True(t, errors.Is(err, domain.ErrLaunchFailed))
}

func TestLauncher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := process.NewLauncher(helperConfig()).Launch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLauncher_HostRoundTrip(t *testing.T) {
	exec := host.New(process.NewLauncher(helperConfig()))
	require.NoError(t, exec.Start(context.Background()))
	defer exec.Close()

	ports.RunExecutorContract(t, exec)

	resp, err := exec.Execute(context.Background(), domain.NewCommand(domain.GetCurrentPage{}), domain.SessionContext{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.Placeholder)
	assert.True(t, resp.Data.Has("pid"))
}

func TestLauncher_HostExitRejectsPending(t *testing.T) {
	exec := host.New(process.NewLauncher(helperConfig("HELPER_EXIT_ON_EXPORT", "1")))
	require.NoError(t, exec.Start(context.Background()))
	defer exec.Close()

	_, err := exec.Execute(context.Background(), domain.NewCommand(domain.ExportDesign{}), domain.SessionContext{})
	assert.True(t, errors.Is(err, domain.ErrHostDisconnected))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing File Uses Default", func(t *testing.T) {
		cfg, err := process.LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, process.DefaultCommand, cfg.Command)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "host.yaml")
		require.NoError(t, os.WriteFile(path, []byte("host:\n  command: node\n  args: [bridge.js]\n  env:\n    PORT: \"9000\"\n"), 0o644))

		cfg, err := process.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "node", cfg.Command)
		assert.Equal(t, []string{"bridge.js"}, cfg.Args)
		assert.Equal(t, "9000", cfg.Environment["PORT"])
	})

	t.Run("JSON Without Command", func(t *testing.T) {
		path := filepath.Join(dir, "host.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"host":{"dir":"/tmp"}}`), 0o644))

		cfg, err := process.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, process.DefaultCommand, cfg.Command)
		assert.Equal(t, "/tmp", cfg.Dir)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("host: [unterminated"), 0o644))

		_, err := process.LoadConfig(path)
		assert.Error(t, err)
	})
}
