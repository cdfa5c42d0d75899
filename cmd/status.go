package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/store"
	"github.com/meltosvc/tvc/internal/tree"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the checked-out branch, HEAD, and staged changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		branchName, head, err := e.Status()
		if err != nil {
			return err
		}
		fmt.Printf("On branch %s\n", branchName)
		fmt.Printf("HEAD: %s\n", head)

		root, err := findRoot()
		if err != nil {
			return err
		}
		f := fs.NewDisk(filepath.Clean(root))
		s := store.New(f, slog.Default())

		stageTree, err := atomicfiles.NewStage(f).Read()
		if err != nil {
			return err
		}
		stageIdx := tree.FromTree(stageTree)

		var headIdx *tree.Index
		if head.IsNull() {
			headIdx = tree.New()
		} else {
			commit, err := s.ReadCommit(head)
			if err != nil {
				return err
			}
			headTree, err := s.ReadTree(commit.Tree)
			if err != nil {
				return err
			}
			headIdx = tree.FromTree(headTree)
		}

		changes := stageIdx.Diff(headIdx)
		if len(changes) == 0 {
			fmt.Println("nothing staged, working tree clean")
			return nil
		}
		fmt.Println("Changes staged for commit:")
		for _, c := range changes {
			fmt.Printf("  %-8s %s\n", c.Kind, c.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
