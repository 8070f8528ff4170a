package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kindlewave/blobcask/pkg/record"
)

var putCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Store a file as a blob",
	Long: `Read a file from disk and store it as a blob, printing the id
blobcaskd assigned it.

Example:
  blobcaskd put ./photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := storeFromContext(cmd)
		if err != nil {
			return err
		}

		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		contentType, _ := cmd.Flags().GetString("content-type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(path))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		props := record.Properties{
			BlobSize:         int64(len(content)),
			CreationTimeMs:   time.Now().UnixMilli(),
			ExpirationTimeMs: -1,
			ContentType:      contentType,
		}

		id, err := bs.Put("", props, nil, content)
		if err != nil {
			return fmt.Errorf("failed to store blob: %w", err)
		}

		cmd.Printf("%s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().String("content-type", "", "Content type to record (default: guessed from the file extension)")
}
