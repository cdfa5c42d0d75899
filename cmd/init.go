package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/config"
	"github.com/meltosvc/tvc/internal/engine"
	"github.com/meltosvc/tvc/internal/fs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new, empty Meltos repository in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getwd: %w", err)
		}
		if info, err := os.Stat(filepath.Join(dir, ".meltos")); err == nil && info.IsDir() {
			return fmt.Errorf("already a meltos repository: %s", dir)
		}
		e := engine.Open(fs.NewDisk(dir), config.Default(), slog.Default())
		if err := e.Init(); err != nil {
			return err
		}
		fmt.Printf("Initialized empty Meltos repository in %s/.meltos\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
