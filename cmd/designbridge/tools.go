package main

import (
	"fmt"
	"os"

	"github.com/aretw0/designbridge/internal/cli"
	"github.com/aretw0/designbridge/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the MCP tools and their arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		render := tui.RendererFor(os.Stdout)
		out, err := render(cli.CatalogMarkdown())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
