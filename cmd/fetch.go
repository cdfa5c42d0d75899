package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/remote"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [remote]",
	Short: "Receive a bundle from a remote and ingest it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		remoteCfg, err := resolveRemote(e, args)
		if err != nil {
			return err
		}
		result, err := e.Fetch(remote.NewHTTPClient(remoteCfg))
		if err != nil {
			return err
		}
		for _, b := range result.UpdatedBranches {
			fmt.Printf("updated %s\n", b)
		}
		for _, b := range result.DivergedBranches {
			fmt.Printf("diverged %s (run merge to reconcile)\n", b)
		}
		if len(result.UpdatedBranches) == 0 && len(result.DivergedBranches) == 0 {
			fmt.Println("already up to date")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
