package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Retrieve a blob's content",
	Long: `Retrieve a blob by id and write its content to stdout.

Example:
  blobcaskd get 2NbZX...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := storeFromContext(cmd)
		if err != nil {
			return err
		}

		id := args[0]
		_, _, content, err := bs.Get(id)
		if err != nil {
			return fmt.Errorf("failed to get blob %s: %w", id, err)
		}

		_, err = os.Stdout.Write(content)
		return err
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
