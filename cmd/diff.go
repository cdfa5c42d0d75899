package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
	"github.com/meltosvc/tvc/internal/tree"
)

var diffCmd = &cobra.Command{
	Use:   "diff [path]",
	Short: "Show line-level differences between the staging tree and HEAD",
	Long: `With no argument, diffs every changed path between the staging tree and
HEAD. With a path argument, limits the diff to that single path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var onlyPath string
		if len(args) == 1 {
			onlyPath = args[0]
		}
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

		branchName, err := atomicfiles.NewWorking(f).TryRead()
		if err != nil {
			return err
		}
		head, err := atomicfiles.NewHead(f, branchName).Read()
		if err != nil {
			return err
		}
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
		dmp := diffmatchpatch.New()
		for _, c := range changes {
			if onlyPath != "" && c.Path != onlyPath {
				continue
			}
			switch c.Kind {
			case tree.Add:
				fmt.Printf("diff --meltos a/%s b/%s\nnew file\n", c.Path, c.Path)
				printFileDiff(dmp, "", fileContents(s, c.Hash))
			case tree.Delete:
				fmt.Printf("diff --meltos a/%s b/%s\ndeleted file\n", c.Path, c.Path)
				printFileDiff(dmp, fileContents(s, c.Hash), "")
			case tree.Modify:
				oldEntry, _ := headIdx.Lookup(c.Path)
				fmt.Printf("diff --meltos a/%s b/%s\n", c.Path, c.Path)
				printFileDiff(dmp, fileContents(s, oldEntry.Hash), fileContents(s, c.Hash))
			}
		}
		return nil
	},
}

func fileContents(s *store.Store, hash objectenc.ObjHash) string {
	if hash.IsNull() || hash == "" {
		return ""
	}
	file, err := s.ReadFile(hash)
	if err != nil {
		return ""
	}
	return string(file.Data)
}

func printFileDiff(dmp *diffmatchpatch.DiffMatchPatch, before, after string) {
	diffs := dmp.DiffMain(before, after, false)
	fmt.Println(dmp.DiffPrettyText(diffs))
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
