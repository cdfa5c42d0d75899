package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "meltos",
	Short: "Meltos is a content-addressed, collaborative version control engine",
}

// Execute runs the CLI, mapping the returned error to spec's exit codes
// (0 success, 1 generic failure, 2 conflict, 3 nothing to commit,
// 4 not initialized).
func Execute() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "meltos: %s\n", fmt.Sprint(err))
		os.Exit(exitCode(err))
	}
}
