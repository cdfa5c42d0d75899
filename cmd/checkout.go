package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch>",
	Short: "Switch the workspace to another branch",
	Long: `Rewrites every tracked file to match the target branch's HEAD tree and
updates WORKING. Pass -b to create the branch first, as a copy of the
currently checked-out one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		create, _ := cmd.Flags().GetBool("create-branch")
		e, err := openEngine()
		if err != nil {
			return err
		}
		if create {
			if err := e.NewBranch(args[0]); err != nil {
				return err
			}
			fmt.Printf("switched to new branch %q\n", args[0])
			return nil
		}
		if err := e.Checkout(args[0]); err != nil {
			return err
		}
		fmt.Printf("switched to branch %q\n", args[0])
		return nil
	},
}

func init() {
	checkoutCmd.Flags().BoolP("create-branch", "b", false, "create the branch before checking it out")
	rootCmd.AddCommand(checkoutCmd)
}
