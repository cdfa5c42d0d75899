package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/config"
	"github.com/meltosvc/tvc/internal/engine"
	"github.com/meltosvc/tvc/internal/remote"
)

var pushCmd = &cobra.Command{
	Use:   "push [remote]",
	Short: "Send the checked-out branch's local commits to a remote",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		branchName, _, err := e.Status()
		if err != nil {
			return err
		}
		remoteCfg, err := resolveRemote(e, args)
		if err != nil {
			return err
		}
		if err := e.Push(branchName, remote.NewHTTPClient(remoteCfg)); err != nil {
			return err
		}
		fmt.Printf("pushed %s\n", branchName)
		return nil
	},
}

// resolveRemote names the remote to push/fetch against: the single
// positional argument if given, otherwise the configured default.
func resolveRemote(e *engine.Engine, args []string) (config.Remote, error) {
	cfg := e.Config()
	if len(args) == 1 {
		r, ok := cfg.Remote[args[0]]
		if !ok {
			return config.Remote{}, fmt.Errorf("remote %q not found", args[0])
		}
		return r, nil
	}
	_, r, err := cfg.DefaultRemote()
	return r, err
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
