package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/internal/cli"
	"github.com/aretw0/designbridge/internal/presentation/tui"
	"github.com/aretw0/designbridge/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts designbridge as an MCP Server.
Every command kind is exposed as a tool, so agents can create wireframes, add and style
elements and export designs. The session context is readable as design://session.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{
			"mcp.transport": "transport",
			"mcp.port":      "port",
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.NewRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Start(ctx); err != nil {
			return err
		}

		srv := mcp.NewServer(rt.Bridge, mcp.WithLogger(logger))

		switch cfg.MCP.Transport {
		case "stdio":
			// Stdout carries JSON-RPC; everything else goes to stderr.
			logger.Info("Starting designbridge MCP Server (Stdio)", "mode", cfg.Mode)
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
		case "sse":
			if tui.IsTerminal(os.Stderr) {
				tui.PrintBanner(os.Stderr, strings.TrimSpace(designbridge.Version), string(cfg.Mode))
			}
			logger.Info("Starting designbridge MCP Server (SSE)", "port", cfg.MCP.Port, "mode", cfg.Mode)
			if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
