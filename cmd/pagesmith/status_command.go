package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pagesmith/internal/preflight"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, the upload helper, and the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(ctx.runContext(cmd), cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, checkLabel(r, colorize), r.Detail})
			}
			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintln(out, renderTable(columnsOf("Check", "Status", "Detail"), rows))

			if orch, err := ctx.orchestrator(); err == nil {
				if ids, err := orch.IDs(); err == nil {
					fmt.Fprintf(out, "Description files: %d\n", len(ids))
				}
			}
			if store, err := ctx.recordStore(); err == nil {
				fmt.Fprintf(out, "Upload records:    %d\n", store.Count())
			}

			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func checkLabel(r preflight.Result, colorize bool) string {
	label, color := "OK", ansiGreen
	switch {
	case r.Passed:
	case r.Optional:
		label, color = "WARN", ansiYellow
	default:
		label, color = "FAIL", ansiRed
	}
	if !colorize {
		return label
	}
	return color + label + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
