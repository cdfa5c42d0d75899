package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:     "stage [path]...",
	Aliases: []string{"add"},
	Short:   "Stage files for the next commit",
	Long: `Stage snapshots every file under each given path into the staging tree of
the currently checked-out branch. A path already deleted from the workspace
but still present at HEAD is staged as an explicit deletion. With no
arguments, the whole workspace is staged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return e.Stage("")
		}
		for _, path := range args {
			if err := e.Stage(path); err != nil {
				return fmt.Errorf("stage %q: %w", path, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stageCmd)
}
