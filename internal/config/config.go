// Package config resolves the bridge settings from defaults, an optional
// designbridge.yaml, DESIGNBRIDGE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/designbridge/pkg/adapters/host"
	"github.com/aretw0/designbridge/pkg/adapters/redis"
	"github.com/aretw0/designbridge/pkg/adapters/simulated"
	"github.com/aretw0/designbridge/pkg/adapters/websocket"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment overrides (DESIGNBRIDGE_REDIS_ADDR, ...).
const EnvPrefix = "DESIGNBRIDGE"

// FileName is the config file looked up in the working directory.
const FileName = "designbridge"

// Mode selects the execution strategy.
type Mode string

const (
	ModeSimulated Mode = "simulated"
	ModeProcess   Mode = "process"
	ModeRedis     Mode = "redis"
	ModeWebSocket Mode = "websocket"
)

// Modes lists the accepted modes.
func Modes() []Mode {
	return []Mode{ModeSimulated, ModeProcess, ModeRedis, ModeWebSocket}
}

type Config struct {
	Mode      Mode            `mapstructure:"mode"`
	LogLevel  string          `mapstructure:"log_level"`
	Simulated SimulatedConfig `mapstructure:"simulated"`
	Host      HostConfig      `mapstructure:"host"`
	Redis     RedisConfig     `mapstructure:"redis"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	MCP       MCPConfig       `mapstructure:"mcp"`
}

type SimulatedConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// HostConfig applies to every live-host mode.
type HostConfig struct {
	PlaceholderDelay time.Duration `mapstructure:"placeholder_delay"`
	CommandTimeout   time.Duration `mapstructure:"command_timeout"`
	// Config points at the YAML/JSON file describing the host subprocess (process mode).
	Config string `mapstructure:"config"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Channel  string        `mapstructure:"channel"`
	LeaseTTL time.Duration `mapstructure:"lease_ttl"`
}

type WebSocketConfig struct {
	Addr           string        `mapstructure:"addr"`
	Path           string        `mapstructure:"path"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Mode:      ModeSimulated,
		LogLevel:  "info",
		Simulated: SimulatedConfig{Delay: simulated.DefaultDelay},
		Host: HostConfig{
			PlaceholderDelay: host.DefaultPlaceholderDelay,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Channel:  redis.DefaultChannel,
			LeaseTTL: redis.DefaultLeaseTTL,
		},
		WebSocket: WebSocketConfig{
			Addr:           websocket.DefaultAddr,
			Path:           websocket.DefaultPath,
			ConnectTimeout: websocket.DefaultConnectTimeout,
		},
		HTTP: HTTPConfig{Port: 8080},
		MCP:  MCPConfig{Transport: "stdio", Port: 8080},
	}
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config path. When empty, designbridge.yaml is searched in Dirs.
	File string
	// Dirs defaults to the working directory.
	Dirs []string
	// Flags maps config keys to command-line flags. Only flags the user changed take effect.
	Flags map[string]*pflag.Flag
}

// Load resolves the configuration.
func Load(opts Options) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		dirs := opts.Dirs
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return Config{}, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can honour.
func (c Config) Validate() error {
	valid := false
	for _, m := range Modes() {
		if c.Mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid mode %q (expected one of simulated, process, redis, websocket)", c.Mode)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("invalid mcp transport %q (expected stdio or sse)", c.MCP.Transport)
	}
	if c.Simulated.Delay < 0 || c.Host.PlaceholderDelay < 0 || c.Host.CommandTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can see nested values on Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("mode", string(d.Mode))
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("simulated.delay", d.Simulated.Delay)
	v.SetDefault("host.placeholder_delay", d.Host.PlaceholderDelay)
	v.SetDefault("host.command_timeout", d.Host.CommandTimeout)
	v.SetDefault("host.config", d.Host.Config)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.channel", d.Redis.Channel)
	v.SetDefault("redis.lease_ttl", d.Redis.LeaseTTL)
	v.SetDefault("websocket.addr", d.WebSocket.Addr)
	v.SetDefault("websocket.path", d.WebSocket.Path)
	v.SetDefault("websocket.connect_timeout", d.WebSocket.ConnectTimeout)
	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("mcp.transport", d.MCP.Transport)
	v.SetDefault("mcp.port", d.MCP.Port)
}
