package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/designbridge/internal/cli"
	"github.com/aretw0/designbridge/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Send a sequence of commands from a YAML script",
	Long: `Runs every step of a script through a single bridge, so later steps build on the
wireframes and pages created by earlier ones. Every step is validated before the first
one is sent.

Script format:
  name: landing
  continue_on_error: false
  steps:
    - kind: create_wireframe
      args: {description: Landing, pages: [Home, Pricing]}
    - kind: add_element
      args: {elementType: button, name: Sign up}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := cli.LoadScript(args[0])
		if err != nil {
			return err
		}

		cfg, logger, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")

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

		printer := cli.Printer{Out: os.Stdout, JSON: jsonMode, Render: tui.RendererFor(os.Stdout)}
		return cli.RunScript(ctx, rt.Bridge, script, printer)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("json", false, "Print one JSON line per step")
}
