package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/designbridge/internal/cli"
	"github.com/aretw0/designbridge/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "designbridge",
	Short: "designbridge relays design commands to a live editor",
	Long: `designbridge turns high-level design commands (create a wireframe, add an element,
style it, export it) into protocol messages for a design editor host, and keeps track
of the wireframes and pages it created so later commands land in the right place.

Without a host it runs in simulated mode and answers every command locally.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./designbridge.yaml if present)")
	rootCmd.PersistentFlags().String("mode", string(config.ModeSimulated), "Execution mode: simulated, process, redis or websocket")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("host-config", "", "Host subprocess config file (process mode)")
}

// loadConfig resolves the configuration for cmd, binding the flags that override config keys.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (config.Config, *slog.Logger, error) {
	file, _ := cmd.Flags().GetString("config")

	flags := map[string]*pflag.Flag{
		"mode":        cmd.Flags().Lookup("mode"),
		"log_level":   cmd.Flags().Lookup("log-level"),
		"host.config": cmd.Flags().Lookup("host-config"),
	}
	for key, name := range bindings {
		flags[key] = cmd.Flags().Lookup(name)
	}

	cfg, err := config.Load(config.Options{File: file, Flags: flags})
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
