package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/config"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage the set of remotes configured in meltos.toml",
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a remote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(root string, cfg *config.Config) error {
			if _, exists := cfg.Remote[args[0]]; exists {
				return fmt.Errorf("remote %q already exists", args[0])
			}
			cfg.Remote[args[0]] = config.Remote{URL: args[1]}
			return config.Save(filepath.Join(root, "meltos.toml"), cfg)
		})
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(root string, cfg *config.Config) error {
			if _, exists := cfg.Remote[args[0]]; !exists {
				return fmt.Errorf("remote %q not found", args[0])
			}
			delete(cfg.Remote, args[0])
			return config.Save(filepath.Join(root, "meltos.toml"), cfg)
		})
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured remotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(root string, cfg *config.Config) error {
			for name, r := range cfg.Remote {
				fmt.Printf("%s\t%s\n", name, r.URL)
			}
			return nil
		})
	},
}

// withConfig loads meltos.toml at the repository root and runs fn against
// it, leaving persistence (or not) to fn.
func withConfig(fn func(root string, cfg *config.Config) error) error {
	root, err := findRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "meltos.toml")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return fn(root, cfg)
}

func init() {
	remoteCmd.AddCommand(remoteAddCmd, remoteRemoveCmd, remoteListCmd)
	rootCmd.AddCommand(remoteCmd)
}
