package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/fs"
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List branches, or create and check out a new one",
	Long: `With no argument, lists every branch known to the repository, marking the
currently checked-out one with "*". With an argument, creates a new branch
from the currently checked-out one and switches to it — equivalent to
"checkout -b" in the teacher's vocabulary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return listBranches()
		}
		e, err := openEngine()
		if err != nil {
			return err
		}
		if err := e.NewBranch(args[0]); err != nil {
			return err
		}
		fmt.Printf("switched to new branch %q\n", args[0])
		return nil
	},
}

func listBranches() error {
	root, err := findRoot()
	if err != nil {
		return err
	}
	f := fs.NewDisk(filepath.Clean(root))
	names, err := atomicfiles.ListBranches(f)
	if err != nil {
		return err
	}
	current, err := atomicfiles.NewWorking(f).Read()
	if err != nil {
		return err
	}
	for _, name := range names {
		marker := "  "
		if name == current {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(branchCmd)
}
