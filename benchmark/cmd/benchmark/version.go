package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-fps/inference"
)

// Set at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and registered back-ends",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "benchmark %s (commit: %s, built: %s)\n", version, commit, date)
		for _, b := range inference.Registered() {
			fmt.Fprintf(out, "  backend: %s\n", b)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
