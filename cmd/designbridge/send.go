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

var sendCmd = &cobra.Command{
	Use:   "send <kind> [args-json]",
	Short: "Send a single command and print the response",
	Long: `Sends one command through a fresh bridge. The kind may be written as
CREATE_WIREFRAME, create_wireframe or create-wireframe; arguments are a JSON object
using the same names as the MCP tools.

Example:
  designbridge send create_wireframe '{"description":"Landing","pages":["Home"]}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rawArgs string
		if len(args) > 1 {
			rawArgs = args[1]
		}
		command, err := cli.ParseCommand(args[0], rawArgs)
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
		return cli.Send(ctx, rt.Bridge, command, printer)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Bool("json", false, "Print the response as a JSON line")
}
