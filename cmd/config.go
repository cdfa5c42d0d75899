package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change meltos.toml settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(root string, cfg *config.Config) error {
			switch args[0] {
			case "bundle_size_limit_bytes":
				fmt.Println(cfg.BundleSizeLimitBytes)
			case "room_lifetime_seconds":
				fmt.Println(cfg.RoomLifetimeSeconds)
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			return nil
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and persist it to meltos.toml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConfig(func(root string, cfg *config.Config) error {
			var n int64
			switch args[0] {
			case "bundle_size_limit_bytes":
				if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
					return fmt.Errorf("invalid integer %q", args[1])
				}
				cfg.BundleSizeLimitBytes = n
			case "room_lifetime_seconds":
				if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
					return fmt.Errorf("invalid integer %q", args[1])
				}
				cfg.RoomLifetimeSeconds = n
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			return config.Save(filepath.Join(root, "meltos.toml"), cfg)
		})
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
