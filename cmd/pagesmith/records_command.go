package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Show recorded uploads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.recordStore()
			if err != nil {
				return err
			}
			list := store.List()
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintf(out, "No uploads recorded in %s\n", store.Path())
				return nil
			}
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}

			rows := make([][]string, 0, len(list))
			for _, rec := range list {
				rows = append(rows, []string{
					rec.UploadedAt.Local().Format("2006-01-02 15:04:05"),
					rec.SourceName,
					rec.RemoteURL,
					rec.Identity,
				})
			}
			columns := columnsOf("Uploaded", "Source", "URL", "Identity")
			columns[3].maxWidth = 24
			fmt.Fprintln(out, renderTable(columns, rows))
			fmt.Fprintf(out, "Showing %d of %d records\n", len(list), store.Count())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	return cmd
}
