package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/store"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history of the currently checked-out branch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		_, head, err := e.Status()
		if err != nil {
			return err
		}
		if head.IsNull() {
			fmt.Println("no commits yet")
			return nil
		}

		root, err := findRoot()
		if err != nil {
			return err
		}
		f := fs.NewDisk(filepath.Clean(root))
		s := store.New(f, slog.Default())

		for hash := head; !hash.IsNull(); {
			commit, err := s.ReadCommit(hash)
			if err != nil {
				return err
			}
			fmt.Printf("commit %s\n", hash)
			fmt.Printf("Branch: %s\n", commit.Branch)
			fmt.Printf("Date:   %s\n", time.Unix(commit.CommittedUnix, 0).Format(time.RFC1123Z))
			fmt.Printf("\n    %s\n\n", commit.Message)
			if len(commit.Parents) == 0 {
				break
			}
			hash = commit.Parents[0]
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
