package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/designbridge/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(config.Options{Dirs: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
	assert.Equal(t, config.ModeSimulated, cfg.Mode)
	assert.Equal(t, time.Second, cfg.Host.PlaceholderDelay)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	content := `
mode: redis
log_level: debug
redis:
  addr: cache:6379
  channel: studio
host:
  command_timeout: 3s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "designbridge.yaml"), []byte(content), 0644))

	t.Run("File", func(t *testing.T) {
		cfg, err := config.Load(config.Options{Dirs: []string{dir}})
		require.NoError(t, err)
		assert.Equal(t, config.ModeRedis, cfg.Mode)
		assert.Equal(t, "cache:6379", cfg.Redis.Addr)
		assert.Equal(t, "studio", cfg.Redis.Channel)
		assert.Equal(t, 3*time.Second, cfg.Host.CommandTimeout)
		// Untouched keys keep their defaults.
		assert.Equal(t, config.Defaults().WebSocket, cfg.WebSocket)
	})

	t.Run("Env Overrides File", func(t *testing.T) {
		t.Setenv("DESIGNBRIDGE_REDIS_CHANNEL", "from-env")
		t.Setenv("DESIGNBRIDGE_SIMULATED_DELAY", "10ms")
		cfg, err := config.Load(config.Options{Dirs: []string{dir}})
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Redis.Channel)
		assert.Equal(t, 10*time.Millisecond, cfg.Simulated.Delay)
	})

	t.Run("Changed Flag Overrides Env", func(t *testing.T) {
		t.Setenv("DESIGNBRIDGE_MODE", "process")
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String("mode", "simulated", "")
		fs.String("log-level", "info", "")
		require.NoError(t, fs.Parse([]string{"--mode", "websocket"}))

		cfg, err := config.Load(config.Options{
			Dirs: []string{dir},
			Flags: map[string]*pflag.Flag{
				"mode":      fs.Lookup("mode"),
				"log_level": fs.Lookup("log-level"),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, config.ModeWebSocket, cfg.Mode)
		// An unchanged flag does not mask the file value.
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode":"process","host":{"config":"host.yaml"}}`), 0644))

	cfg, err := config.Load(config.Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, config.ModeProcess, cfg.Mode)
	assert.Equal(t, "host.yaml", cfg.Host.Config)

	_, err = config.Load(config.Options{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Unknown Mode", map[string]string{"DESIGNBRIDGE_MODE": "teleport"}},
		{"Unknown Transport", map[string]string{"DESIGNBRIDGE_MCP_TRANSPORT": "carrier-pigeon"}},
		{"Negative Delay", map[string]string{"DESIGNBRIDGE_HOST_PLACEHOLDER_DELAY": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(config.Options{Dirs: []string{t.TempDir()}})
			assert.Error(t, err)
		})
	}
}
