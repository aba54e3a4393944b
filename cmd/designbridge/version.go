package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/designbridge"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of designbridge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("designbridge version %s\n", strings.TrimSpace(designbridge.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
