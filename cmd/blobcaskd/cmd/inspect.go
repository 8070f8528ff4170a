package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindlewave/blobcask/pkg/header"
	"github.com/kindlewave/blobcask/pkg/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [id]",
	Short: "Print a blob's parsed message header, or scan the whole log",
	Long: `With an id, parse and verify that blob's message header without
reading its sub-record bodies, and print the header's fields.

With no id, scan the whole append-only log in write order and print one
line per message, stopping at the first unreadable message (a torn
trailing write leaves one after a crash).

Example:
  blobcaskd inspect 2NbZX...
  blobcaskd inspect`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := storeFromContext(cmd)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return bs.ScanLog(func(loc store.Location, res *store.ReadResult) error {
				shape := "put"
				if res.IsDelete {
					shape = "delete"
				}
				cmd.Printf("offset=%d size=%d shape=%s total_size=%d\n",
					loc.Offset, loc.Size, shape, res.Header.TotalSize())
				return nil
			})
		}

		id := args[0]
		h, err := bs.Header(id)
		if err != nil {
			return fmt.Errorf("failed to read header for %s: %w", id, err)
		}

		printHeader(cmd, h)
		return nil
	},
}

func printHeader(cmd *cobra.Command, h *header.View) {
	cmd.Printf("version:                 %d\n", h.Version())
	cmd.Printf("total_size:              %d\n", h.TotalSize())
	cmd.Printf("blob_properties_rel_off: %d\n", h.BlobPropertiesRelOffset())
	cmd.Printf("delete_rel_off:          %d\n", h.DeleteRelOffset())
	cmd.Printf("user_metadata_rel_off:   %d\n", h.UserMetadataRelOffset())
	cmd.Printf("blob_rel_off:            %d\n", h.BlobRelOffset())
	if h.IsPutMessage() {
		cmd.Printf("shape:                   put-message\n")
	} else {
		cmd.Printf("shape:                   delete-message\n")
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
