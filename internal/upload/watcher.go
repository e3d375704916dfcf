package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"pagesmith/internal/logging"
)

// WatchLockName is the single-instance lock file created inside the inbox.
const WatchLockName = ".pagesmith-watch.lock"

// Watcher reacts to inbox events until its context is cancelled or Stop is
// called.
type Watcher struct {
	pipeline *Pipeline
	source   EventSource
	settle   time.Duration
	workers  int
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	timers  map[string]*time.Timer
}

// NewWatcher binds a pipeline to an event source. settle is how long a file
// must see no events before it is uploaded.
func NewWatcher(pipeline *Pipeline, source EventSource, settle time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		pipeline: pipeline,
		source:   source,
		settle:   settle,
		workers:  pipeline.opts.Workers,
		logger:   logging.NewComponentLogger(logger, "watcher"),
	}
}

// Run watches the inbox. Files already present are scheduled on start. Run
// returns after in-flight uploads finish; uploads are interrupted only when
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	inbox := w.pipeline.opts.InboxDir
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	lock := flock.New(filepath.Join(inbox, WatchLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire watch lock: %w", err)
	}
	if !locked {
		return ErrWatcherRunning
	}
	defer lock.Unlock() //nolint:errcheck

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.quit = make(chan struct{})
	w.timers = make(map[string]*time.Timer)
	quit := w.quit
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		for _, timer := range w.timers {
			timer.Stop()
		}
		w.timers = nil
		w.running = false
		w.mu.Unlock()
	}()

	defer w.source.Close() //nolint:errcheck
	if err := w.source.Add(inbox); err != nil {
		return err
	}

	// done is closed once the loop exits; late settle timers and queued
	// workers give up on it.
	done := make(chan struct{})
	ready := make(chan string)
	sem := make(chan struct{}, max(w.workers, 1))
	var inflight sync.WaitGroup
	defer inflight.Wait()
	defer close(done)

	w.logger.Info("watching inbox",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String(logging.FieldPath, inbox),
		logging.Duration("settle", w.settle))

	pending, err := w.pipeline.Pending()
	if err != nil {
		return err
	}
	for _, path := range pending {
		w.schedule(path, ready, done)
	}

	events := w.source.Events()
	errs := w.source.Errors()
	for {
		select {
		case <-ctx.Done():
			w.logStopped("context cancelled")
			return nil
		case <-quit:
			w.logStopped("stop requested")
			return nil
		case ev, ok := <-events:
			if !ok {
				return errors.New("event source closed")
			}
			w.handleEvent(ev, ready, done)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logging.WarnWithContext(w.logger, "filesystem watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some inbox events may be missed until the next restart"))
		case path := <-ready:
			w.forget(path)
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				select {
				case sem <- struct{}{}:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
				defer func() { <-sem }()
				w.process(ctx, path)
			}()
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running || w.quit == nil {
		return
	}
	close(w.quit)
	w.quit = nil
}

func (w *Watcher) handleEvent(ev Event, ready chan<- string, done <-chan struct{}) {
	if filepath.Clean(filepath.Dir(ev.Path)) != filepath.Clean(w.pipeline.opts.InboxDir) {
		return
	}
	if !w.pipeline.Matches(filepath.Base(ev.Path)) {
		return
	}
	if ev.Op&(OpCreate|OpWrite) != 0 {
		w.schedule(ev.Path, ready, done)
		return
	}
	if ev.Op&(OpRemove|OpRename) != 0 {
		w.cancel(ev.Path)
	}
}

// schedule arms or re-arms the settle timer for path.
func (w *Watcher) schedule(path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()
}

func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		w.logger.Debug("file gone before upload", logging.String(logging.FieldPath, path))
		return
	}
	// Failures are logged by the pipeline; the loop keeps running.
	_, _ = w.pipeline.Process(ctx, path)
}

func (w *Watcher) logStopped(reason string) {
	w.logger.Info("watch stopped",
		logging.String(logging.FieldEventType, "watch_stopped"),
		logging.String("reason", reason))
}
