package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"pagesmith/internal/logging"
	"pagesmith/internal/preflight"
	"pagesmith/internal/upload"
)

type pipelineOptions struct {
	noClipboard bool
	observer    upload.Observer
}

func (c *commandContext) pipeline(opts pipelineOptions) (*upload.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if check := preflight.CheckHelper(cfg.Upload.Helper); !check.Passed {
		return nil, fmt.Errorf("upload helper unavailable: %s (set upload.helper or PAGESMITH_UPLOAD_HELPER)", check.Detail)
	}

	uploader, err := upload.NewCommandUploader(cfg.Upload.Helper, cfg.Upload.HelperArgs, cfg.UploadTimeout(),
		upload.WithHelperLogger(logger))
	if err != nil {
		return nil, err
	}
	store, err := c.recordStore()
	if err != nil {
		return nil, fmt.Errorf("open upload records: %w", err)
	}

	var options []upload.Option
	if opts.observer != nil {
		options = append(options, upload.WithObserver(opts.observer))
	}
	if cfg.Upload.Clipboard && !opts.noClipboard {
		options = append(options,
			upload.WithClipboard(upload.SystemClipboard{}),
			upload.WithClipboardReader(upload.SystemClipboard{}))
	}
	return upload.NewPipeline(upload.OptionsFromConfig(cfg), uploader, store, logger, options...)
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var noClipboard bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload every image currently in the inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.pipeline(pipelineOptions{noClipboard: noClipboard})
			if err != nil {
				return err
			}
			defer p.Close()

			summary, runErr := p.RunOnce(ctx.runContext(cmd))
			out := cmd.OutOrStdout()
			if summary.Total == 0 && runErr == nil {
				cfg, _ := ctx.ensureConfig()
				fmt.Fprintf(out, "No images waiting in %s\n", cfg.Paths.InboxDir)
				return nil
			}
			printUploadSummary(out, summary)
			if runErr != nil {
				return fmt.Errorf("%d of %d images not completed:\n%w", summary.Failed+summary.Unrecorded, summary.Total, runErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "Do not copy uploaded URLs to the clipboard")
	return cmd
}

func printUploadSummary(out io.Writer, summary upload.Summary) {
	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		result := "uploaded"
		switch {
		case outcome.MovedTo == "":
			result = "failed"
		case outcome.Reused:
			result = "reused"
		}
		rows = append(rows, []string{filepath.Base(outcome.Path), result, outcome.URL})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(columnsOf("File", "Result", "URL"), rows))
	}
	fmt.Fprintf(out, "%d uploaded, %d reused, %d failed\n", summary.Uploaded, summary.Reused, summary.Failed)
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var noClipboard bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and upload images as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(ctx.runContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runWatch(signalCtx, cmd.OutOrStdout(), ctx, noClipboard)
		},
	}
	cmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "Do not copy uploaded URLs to the clipboard")
	return cmd
}

func runWatch(runCtx context.Context, out io.Writer, ctx *commandContext, noClipboard bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	var outMu sync.Mutex
	observer := func(change upload.StateChange) {
		var line string
		switch change.State {
		case upload.StateSucceeded:
			line = fmt.Sprintf("%s -> %s", filepath.Base(change.Path), change.URL)
		case upload.StateFailed:
			line = fmt.Sprintf("%s failed: %v", filepath.Base(change.Path), change.Err)
		default:
			return
		}
		outMu.Lock()
		fmt.Fprintln(out, line)
		outMu.Unlock()
	}

	p, err := ctx.pipeline(pipelineOptions{noClipboard: noClipboard, observer: observer})
	if err != nil {
		return err
	}
	defer p.Close()

	source, err := upload.NewFSNotifySource()
	if err != nil {
		return err
	}
	watcher := upload.NewWatcher(p, source, cfg.SettleDelay(), logger)

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", cfg.Paths.InboxDir)
	err = watcher.Run(runCtx)
	if errors.Is(err, upload.ErrWatcherRunning) {
		logging.WarnWithContext(logger, "watch not started", "watch_lock_held",
			logging.String(logging.FieldPath, cfg.Paths.InboxDir),
			logging.String(logging.FieldErrorHint, "stop the other pagesmith watch process first"),
			logging.String(logging.FieldImpact, "no images uploaded by this process"))
	}
	return err
}
