package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"pagesmith/internal/config"
	"pagesmith/internal/fileutil"
	"pagesmith/internal/logging"
	"pagesmith/internal/records"
)

// State is the per-file upload state.
type State string

const (
	StateDetected  State = "detected"
	StateUploading State = "uploading"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// StateChange is delivered to an Observer on every transition.
type StateChange struct {
	Path  string
	State State
	URL   string
	Err   error
}

// Observer receives state transitions. It is called synchronously from the
// goroutine processing the file.
type Observer func(StateChange)

// RecordStore is the subset of the record store the pipeline needs.
type RecordStore interface {
	Lookup(identity string) (records.Record, bool)
	Append(rec records.Record) error
}

// Options configures a Pipeline.
type Options struct {
	InboxDir     string
	UploadedDir  string
	Patterns     []string
	IdentityMode string
	Workers      int
	WriteSidecar bool
	// ClipboardFallback bounds the clipboard poll after a helper run that
	// printed no URL. It needs WithClipboardReader.
	ClipboardFallback time.Duration
	// ClipboardPoll is the poll interval; zero means 500ms.
	ClipboardPoll time.Duration
}

// OptionsFromConfig maps the [paths] and [upload] sections onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InboxDir:     cfg.Paths.InboxDir,
		UploadedDir:  cfg.Paths.UploadedDir,
		Patterns:     cfg.Upload.Patterns,
		IdentityMode: cfg.Upload.Identity,
		Workers:      cfg.Upload.Workers,
		WriteSidecar: cfg.Upload.WriteURLSidecar,

		ClipboardFallback: cfg.ClipboardFallback(),
	}
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClipboard publishes each URL to writer. Without it URLs are only logged.
func WithClipboard(writer ClipboardWriter) Option {
	return func(p *Pipeline) { p.clipboardWriter = writer }
}

// WithClipboardReader enables reading the helper's URL from the clipboard
// when its output has none.
func WithClipboardReader(reader ClipboardReader) Option {
	return func(p *Pipeline) { p.clipboardReader = reader }
}

// WithObserver registers a transition observer.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) { p.observer = observer }
}

// WithClock overrides the time source used for record timestamps and
// uploaded file names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Outcome describes a processed file.
type Outcome struct {
	Path     string
	Identity string
	URL      string
	// Reused is set when the URL came from an existing record.
	Reused bool
	// Skipped is set when the same path was already being processed.
	Skipped bool
	MovedTo string
	Sidecar string
}

// Pipeline processes inbox files. It is safe for concurrent use.
type Pipeline struct {
	opts            Options
	uploader        Uploader
	store           RecordStore
	logger          *slog.Logger
	observer        Observer
	now             func() time.Time
	clipboardWriter ClipboardWriter
	clipboardReader ClipboardReader
	clipboard       *clipboardMailbox
	// clipMu orders clipboard writes against helper runs that may need
	// the clipboard fallback.
	clipMu sync.Mutex

	mu         sync.Mutex
	paths      map[string]struct{}
	identities map[string]chan struct{}
	reserved   map[string]struct{}
}

// NewPipeline constructs a pipeline. Close must be called to flush the
// clipboard worker.
func NewPipeline(opts Options, uploader Uploader, store RecordStore, logger *slog.Logger, options ...Option) (*Pipeline, error) {
	if uploader == nil {
		return nil, errors.New("uploader required")
	}
	if store == nil {
		return nil, errors.New("record store required")
	}
	if strings.TrimSpace(opts.InboxDir) == "" || strings.TrimSpace(opts.UploadedDir) == "" {
		return nil, errors.New("inbox and uploaded directories required")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.IdentityMode == "" {
		opts.IdentityMode = records.ModeContent
	}
	if opts.ClipboardPoll <= 0 {
		opts.ClipboardPoll = 500 * time.Millisecond
	}
	p := &Pipeline{
		opts:       opts,
		uploader:   uploader,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "upload"),
		now:        time.Now,
		paths:      make(map[string]struct{}),
		identities: make(map[string]chan struct{}),
		reserved:   make(map[string]struct{}),
	}
	for _, option := range options {
		option(p)
	}
	if p.clipboardWriter != nil {
		p.clipboard = newClipboardMailbox(p.clipboardWriter, &p.clipMu, p.logger)
	}
	return p, nil
}

// Close flushes the pending clipboard write and stops the clipboard worker.
func (p *Pipeline) Close() {
	if p.clipboard != nil {
		p.clipboard.Close()
	}
}

// Matches reports whether name is an inbox file the pipeline handles.
func (p *Pipeline) Matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	lower := strings.ToLower(name)
	for _, pattern := range p.opts.Patterns {
		if ok, err := doublestar.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}

// Pending lists matching regular files currently in the inbox, sorted by name.
func (p *Pipeline) Pending() ([]string, error) {
	entries, err := os.ReadDir(p.opts.InboxDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !p.Matches(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(p.opts.InboxDir, entry.Name()))
	}
	return paths, nil
}

// Process drives one file from detected to succeeded or failed.
//
// A failed upload leaves the file in place and returns a *Failure. A record
// write failure does not stop the move or clipboard publish: the Outcome
// carries the URL and the returned error wraps records.ErrRecordWrite.
func (p *Pipeline) Process(ctx context.Context, path string) (Outcome, error) {
	outcome := Outcome{Path: path}
	if !p.claimPath(path) {
		outcome.Skipped = true
		return outcome, nil
	}
	defer p.releasePath(path)

	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldPath, path))
	p.transition(logger, StateChange{Path: path, State: StateDetected})

	fail := func(stage string, err error) (Outcome, error) {
		failure := &Failure{Path: path, Stage: stage, URL: outcome.URL, Err: err}
		p.transition(logger, StateChange{Path: path, State: StateFailed, URL: outcome.URL, Err: failure})
		return outcome, failure
	}

	identity, err := records.IdentityFor(path, p.opts.IdentityMode)
	if err != nil {
		return fail("identity", err)
	}
	outcome.Identity = identity
	logger = logger.With(logging.String(logging.FieldIdentity, identity))

	release, err := p.claimIdentity(ctx, identity)
	if err != nil {
		return fail("identity", err)
	}
	defer release()

	var recordErr error
	dest, err := p.reserveDestination(filepath.Base(path))
	if err != nil {
		return fail("move", err)
	}
	defer p.releaseDestination(dest)

	if rec, ok := p.store.Lookup(identity); ok {
		outcome.URL = rec.RemoteURL
		outcome.Reused = true
		logger.Info("reusing recorded url",
			logging.String(logging.FieldEventType, "upload_reused"),
			logging.String(logging.FieldURL, rec.RemoteURL))
	} else {
		p.transition(logger, StateChange{Path: path, State: StateUploading})
		url, err := p.upload(ctx, path, logger)
		if err != nil {
			return fail("upload", err)
		}
		outcome.URL = url

		recordErr = p.store.Append(records.Record{
			Identity:   identity,
			RemoteURL:  url,
			UploadedAt: p.now().UTC(),
			SourceName: filepath.Base(path),
			StoredAs:   filepath.Base(dest),
		})
		if recordErr != nil {
			logging.ErrorWithContext(logger, "upload succeeded but record was not saved", "record_write_failed",
				logging.String(logging.FieldURL, url),
				logging.Error(recordErr),
				logging.String(logging.FieldErrorHint, "copy the url now; the image will be uploaded again next run"))
		}
	}

	if p.clipboard != nil {
		p.clipboard.Publish(outcome.URL)
	}

	if err := fileutil.MoveFile(path, dest); err != nil {
		return fail("move", err)
	}
	outcome.MovedTo = dest

	if p.opts.WriteSidecar {
		sidecar := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".txt"
		if err := os.WriteFile(sidecar, []byte(outcome.URL+"\n"), 0o644); err != nil {
			logging.WarnWithContext(logger, "url sidecar not written", "sidecar_write_failed",
				logging.String(logging.FieldPath, sidecar),
				logging.Error(err),
				logging.String(logging.FieldImpact, "url only available from records and logs"))
		} else {
			outcome.Sidecar = sidecar
		}
	}

	p.transition(logger, StateChange{Path: path, State: StateSucceeded, URL: outcome.URL})
	logger.Info("image uploaded",
		logging.String(logging.FieldEventType, "upload_succeeded"),
		logging.String(logging.FieldURL, outcome.URL),
		logging.Bool("reused", outcome.Reused),
		logging.String("moved_to", dest))
	return outcome, recordErr
}

// upload runs the helper. With the clipboard fallback enabled, helper runs
// are serialized and a URL that appears on the clipboard afterwards is
// accepted when the helper printed none.
func (p *Pipeline) upload(ctx context.Context, path string, logger *slog.Logger) (string, error) {
	if p.clipboardReader == nil || p.opts.ClipboardFallback <= 0 {
		return p.uploader.Upload(ctx, path)
	}

	p.clipMu.Lock()
	defer p.clipMu.Unlock()
	before, readErr := p.clipboardReader.ReadText()
	url, err := p.uploader.Upload(ctx, path)
	if !errors.Is(err, ErrNoURL) || readErr != nil {
		return url, err
	}

	found, ok := p.awaitClipboardURL(ctx, before)
	if !ok {
		return "", fmt.Errorf("%w (clipboard held no new url after %s)", err, p.opts.ClipboardFallback)
	}
	logger.Info("url read from clipboard",
		logging.String(logging.FieldEventType, "clipboard_fallback"),
		logging.String(logging.FieldURL, found))
	return found, nil
}

// awaitClipboardURL polls until the clipboard text differs from before and
// contains a URL.
func (p *Pipeline) awaitClipboardURL(ctx context.Context, before string) (string, bool) {
	deadline := time.NewTimer(p.opts.ClipboardFallback)
	defer deadline.Stop()
	ticker := time.NewTicker(p.opts.ClipboardPoll)
	defer ticker.Stop()

	for {
		text, err := p.clipboardReader.ReadText()
		if err != nil {
			return "", false
		}
		if text != before {
			if url, ok := ExtractURL(text); ok {
				return url, true
			}
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-deadline.C:
			return "", false
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) transition(logger *slog.Logger, change StateChange) {
	attrs := []logging.Attr{logging.String(logging.FieldState, string(change.State))}
	if change.Err != nil {
		logging.ErrorWithContext(logger, "upload failed", "upload_failed",
			append(attrs, logging.Error(change.Err),
				logging.String(logging.FieldErrorHint, "the file stays in the inbox and is retried next run"))...)
	} else {
		logger.Debug("upload state changed", logging.Args(attrs...)...)
	}
	if p.observer != nil {
		p.observer(change)
	}
}

func (p *Pipeline) claimPath(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.paths[path]; busy {
		return false
	}
	p.paths[path] = struct{}{}
	return true
}

func (p *Pipeline) releasePath(path string) {
	p.mu.Lock()
	delete(p.paths, path)
	p.mu.Unlock()
}

// claimIdentity waits until no other file with the same identity is in flight.
func (p *Pipeline) claimIdentity(ctx context.Context, identity string) (func(), error) {
	for {
		p.mu.Lock()
		busy, ok := p.identities[identity]
		if !ok {
			done := make(chan struct{})
			p.identities[identity] = done
			p.mu.Unlock()
			return func() {
				p.mu.Lock()
				delete(p.identities, identity)
				p.mu.Unlock()
				close(done)
			}, nil
		}
		p.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// reserveDestination picks "<YYYYmmdd_HHMMSS>_<name>" in the uploaded
// directory, adding "-N" before the extension until the name is free.
func (p *Pipeline) reserveDestination(name string) (string, error) {
	if err := os.MkdirAll(p.opts.UploadedDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploaded directory: %w", err)
	}
	stamped := p.now().Format("20060102_150405") + "_" + name
	ext := filepath.Ext(stamped)
	stem := strings.TrimSuffix(stamped, ext)

	p.mu.Lock()
	defer p.mu.Unlock()
	for n := 0; ; n++ {
		candidate := stamped
		if n > 0 {
			candidate = stem + "-" + strconv.Itoa(n) + ext
		}
		dest := filepath.Join(p.opts.UploadedDir, candidate)
		if _, taken := p.reserved[dest]; taken {
			continue
		}
		if _, err := os.Lstat(dest); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", dest, err)
		}
		p.reserved[dest] = struct{}{}
		return dest, nil
	}
}

func (p *Pipeline) releaseDestination(dest string) {
	p.mu.Lock()
	delete(p.reserved, dest)
	p.mu.Unlock()
}
