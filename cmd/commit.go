package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record the staging tree as a new commit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		if strings.TrimSpace(message) == "" {
			fmt.Print("Enter commit message: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("no commit message provided")
			}
			message = strings.TrimSpace(line)
		}
		if message == "" {
			return fmt.Errorf("aborting commit due to empty commit message")
		}

		e, err := openEngine()
		if err != nil {
			return err
		}
		hash, err := e.Commit(message)
		if err != nil {
			return err
		}
		fmt.Printf("committed %s\n", hash)
		return nil
	},
}

func init() {
	commitCmd.Flags().StringP("message", "m", "", "Commit message")
	rootCmd.AddCommand(commitCmd)
}
