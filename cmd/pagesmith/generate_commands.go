package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-all",
		Short: "Generate artifacts for every description file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateAll(cmd, ctx)
		},
	}
}

func runGenerateAll(cmd *cobra.Command, ctx *commandContext) error {
	orch, err := ctx.orchestrator()
	if err != nil {
		return err
	}
	report, err := orch.GenerateAll(ctx.runContext(cmd))
	out := cmd.OutOrStdout()
	for _, generated := range report.Generated {
		fmt.Fprintf(out, "Generated %s -> %s\n", generated.ID, generated.Entry.Filename())
	}
	total := len(report.Generated) + len(report.Failures)
	fmt.Fprintf(out, "%d of %d entries generated\n", len(report.Generated), total)
	if err != nil {
		return fmt.Errorf("%d entries failed:\n%w", len(report.Failures), err)
	}
	return nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <id>...",
		Short: "Generate artifacts for the named description files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd)
			out := cmd.OutOrStdout()
			var errs []error
			for _, id := range args {
				generated, err := orch.Generate(runCtx, id)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "Generated %s\n", generated.ID)
				fmt.Fprintf(out, "  fragment:  %s\n", generated.Fragment)
				fmt.Fprintf(out, "  preview:   %s\n", generated.Preview)
				fmt.Fprintf(out, "  shortcode: %s\n", generated.Shortcode)
				for _, skipped := range generated.Skipped {
					fmt.Fprintf(out, "  skipped:   %s\n", skipped)
				}
			}
			return errors.Join(errs...)
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List description files and their generated artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			listings, err := orch.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(listings) == 0 {
				cfg, _ := ctx.ensureConfig()
				fmt.Fprintf(out, "No description files found in %s\n", cfg.Paths.ConfigsDir)
				return nil
			}

			rows := make([][]string, 0, len(listings))
			for _, l := range listings {
				status := "ok"
				if l.Err != nil {
					status = l.Err.Error()
				}
				rows = append(rows, []string{
					l.ID,
					l.DisplayName,
					l.Version,
					yesNo(l.HasFragment),
					yesNo(l.HasPreview),
					yesNo(l.HasShortcode),
					status,
				})
			}
			columns := columnsOf("ID", "Name", "Version", "Fragment", "Preview", "Shortcode", "Status")
			columns[6].maxWidth = 60
			fmt.Fprintln(out, renderTable(columns, rows))
			return nil
		},
	}
}

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated fragments, previews, and shortcode files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			removed, err := orch.Clean()
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d generated files\n", removed)
			return err
		},
	}
}
