package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/history"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge another branch into the currently checked-out one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		result, err := e.Merge(args[0])
		if err != nil {
			return err
		}
		switch result.Status {
		case history.FastForward:
			fmt.Printf("fast-forwarded to %s\n", result.Commit)
		case history.UpToDate:
			fmt.Println("already up to date")
		case history.Merged:
			fmt.Printf("merged, new commit %s\n", result.Commit)
		case history.Conflict:
			fmt.Println("merge conflict in:")
			printConflictHunks(args[0], result.Paths)
			return tvcerr.Conflict("cmd.merge", result.Paths)
		}
		return nil
	},
}

// printConflictHunks renders a diffmatchpatch hunk per conflicting path,
// comparing the incoming branch's version against the checked-out branch's
// version, alongside the raw path list spec.md §4.7 reports.
func printConflictHunks(sourceBranch string, paths []string) {
	root, err := findRoot()
	if err != nil {
		return
	}
	f := fs.NewDisk(filepath.Clean(root))
	s := store.New(f, slog.Default())

	destBranch, err := atomicfiles.NewWorking(f).TryRead()
	if err != nil {
		return
	}
	srcHead, err := atomicfiles.NewHead(f, sourceBranch).Read()
	if err != nil {
		return
	}
	dstHead, err := atomicfiles.NewHead(f, destBranch).Read()
	if err != nil {
		return
	}

	dmp := diffmatchpatch.New()
	for _, path := range paths {
		fmt.Printf("  %s\n", path)
		srcContent := contentAt(s, srcHead, path)
		dstContent := contentAt(s, dstHead, path)
		diffs := dmp.DiffMain(dstContent, srcContent, false)
		fmt.Println(dmp.DiffPrettyText(diffs))
	}
}

// contentAt returns the text of path as it exists at commitHash, or the
// empty string if the commit is null or the path isn't a file there.
func contentAt(s *store.Store, commitHash objectenc.ObjHash, path string) string {
	if commitHash.IsNull() {
		return ""
	}
	commit, err := s.ReadCommit(commitHash)
	if err != nil {
		return ""
	}
	t, err := s.ReadTree(commit.Tree)
	if err != nil {
		return ""
	}
	entry, ok := t.Lookup(path)
	if !ok || entry.Kind != objectenc.KindFile {
		return ""
	}
	file, err := s.ReadFile(entry.Hash)
	if err != nil {
		return ""
	}
	return string(file.Data)
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
