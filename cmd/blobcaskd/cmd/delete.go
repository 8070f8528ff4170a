package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a blob",
	Long: `Write a delete-tombstone message for a blob and remove it from
the index.

Example:
  blobcaskd delete 2NbZX...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := storeFromContext(cmd)
		if err != nil {
			return err
		}

		id := args[0]
		if err := bs.Delete(id); err != nil {
			return fmt.Errorf("failed to delete blob %s: %w", id, err)
		}

		cmd.Printf("deleted %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
