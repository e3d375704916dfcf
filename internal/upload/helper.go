package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"pagesmith/internal/logging"
)

// PathPlaceholder is replaced with the image path in helper arguments.
const PathPlaceholder = "{path}"

// Uploader sends one local file to the image host and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// HelperOption configures a CommandUploader.
type HelperOption func(*CommandUploader)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) HelperOption {
	return func(u *CommandUploader) {
		if exec != nil {
			u.exec = exec
		}
	}
}

// WithHelperLogger sets the logger used for helper diagnostics.
func WithHelperLogger(logger *slog.Logger) HelperOption {
	return func(u *CommandUploader) {
		u.logger = logging.NewComponentLogger(logger, "upload-helper")
	}
}

// CommandUploader runs the configured helper once per file.
type CommandUploader struct {
	helper  string
	args    []string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// NewCommandUploader constructs an uploader for helper. Each occurrence of
// PathPlaceholder in args is replaced with the file path; if none is present
// the path is appended.
func NewCommandUploader(helper string, args []string, timeout time.Duration, opts ...HelperOption) (*CommandUploader, error) {
	helper = strings.TrimSpace(helper)
	if helper == "" {
		return nil, errors.New("upload helper required")
	}
	u := &CommandUploader{
		helper:  helper,
		args:    append([]string(nil), args...),
		timeout: timeout,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Upload runs the helper and extracts the first http(s) URL from its output.
func (u *CommandUploader) Upload(ctx context.Context, path string) (string, error) {
	runCtx := ctx
	if u.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	args := u.argsFor(path)
	u.logger.Debug("running upload helper",
		logging.String("helper", u.helper),
		logging.Any("args", args))

	output, err := u.exec.Run(runCtx, u.helper, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%s timed out after %s", u.helper, u.timeout)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w: %s", u.helper, err, summarizeOutput(output))
	}

	url, ok := ExtractURL(string(output))
	if !ok {
		return "", fmt.Errorf("%s: %w: %s", u.helper, ErrNoURL, summarizeOutput(output))
	}
	return url, nil
}

func (u *CommandUploader) argsFor(path string) []string {
	args := make([]string, 0, len(u.args)+1)
	substituted := false
	for _, arg := range u.args {
		if strings.Contains(arg, PathPlaceholder) {
			arg = strings.ReplaceAll(arg, PathPlaceholder, path)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, path)
	}
	return args
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+|\bwww\.[^\s"'<>]+`)

// ExtractURL returns the first http or https URL in output. A bare
// www. address is returned with an https:// prefix.
func ExtractURL(output string) (string, bool) {
	match := urlPattern.FindString(output)
	match = strings.TrimRight(match, ".,;:)]}")
	if match == "" || strings.HasSuffix(match, "://") || match == "www." {
		return "", false
	}
	if strings.HasPrefix(match, "www.") {
		match = "https://" + match
	}
	return match, true
}

func summarizeOutput(output []byte) string {
	text := strings.Join(strings.Fields(string(output)), " ")
	if text == "" {
		return "(no output)"
	}
	const limit = 200
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = 2 * time.Second
	return cmd.CombinedOutput()
}
