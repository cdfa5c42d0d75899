package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meltosvc/tvc/internal/compressio"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file <hash>",
	Short: "Inspect a single stored object by its content hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := findRoot()
		if err != nil {
			return err
		}
		f := fs.NewDisk(filepath.Clean(root))
		s := store.New(f, slog.Default())
		hash := objectenc.ObjHash(args[0])

		showType, _ := cmd.Flags().GetBool("type")
		showSize, _ := cmd.Flags().GetBool("size")

		raw, err := s.ReadRaw(hash)
		if err != nil {
			return err
		}
		encoded, err := compressio.Decompress(raw)
		if err != nil {
			return err
		}
		kind, ok := objectenc.KindOf(encoded)
		if !ok {
			return fmt.Errorf("cat-file: unrecognized object header for %s", hash)
		}

		switch {
		case showType:
			fmt.Println(kind)
			return nil
		case showSize:
			fmt.Println(len(encoded))
			return nil
		}

		obj, err := s.Read(hash)
		if err != nil {
			return err
		}
		switch o := obj.(type) {
		case *objectenc.File:
			fmt.Print(string(o.Data))
		case *objectenc.Delete:
			fmt.Printf("delete %s\n", o.Removed)
		case *objectenc.Tree:
			for _, e := range o.Entries {
				fmt.Printf("%s %s %s\n", e.Kind, e.Hash, e.Path)
			}
		case *objectenc.Commit:
			fmt.Printf("branch  %s\n", o.Branch)
			fmt.Printf("tree    %s\n", o.Tree)
			for _, p := range o.Parents {
				fmt.Printf("parent  %s\n", p)
			}
			fmt.Printf("time    %d\n\n%s\n", o.CommittedUnix, o.Message)
		}
		return nil
	},
}

func init() {
	catFileCmd.Flags().BoolP("type", "t", false, "print the object's kind and exit")
	catFileCmd.Flags().BoolP("size", "s", false, "print the object's encoded size and exit")
	rootCmd.AddCommand(catFileCmd)
}
