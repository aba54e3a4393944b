package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCommand is the host tool looked up on PATH when no config names one.
const DefaultCommand = "design-host"

// Config describes how to spawn the host tool.
type Config struct {
	Command     string            `yaml:"command" json:"command" mapstructure:"command"`
	Args        []string          `yaml:"args" json:"args" mapstructure:"args"`
	Environment map[string]string `yaml:"env" json:"env" mapstructure:"env"`
	Dir         string            `yaml:"dir" json:"dir" mapstructure:"dir"`
}

// configFile is the on-disk shape: a single "host" block.
type configFile struct {
	Host Config `yaml:"host" json:"host"`
}

// LoadConfig reads a host configuration file (YAML or JSON).
// A missing file yields the default configuration.
func LoadConfig(path string) (Config, error) {
	cfg := Config{Command: DefaultCommand}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read host config: %w", err)
	}

	var file configFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if file.Host.Command == "" {
		file.Host.Command = DefaultCommand
	}
	return file.Host, nil
}
