package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atotto/clipboard"

	"pagesmith/internal/logging"
)

// ClipboardWriter places text on the operator's clipboard.
type ClipboardWriter interface {
	WriteText(text string) error
}

// ClipboardReader returns the current clipboard text.
type ClipboardReader interface {
	ReadText() (string, error)
}

// SystemClipboard reads and writes the platform clipboard.
type SystemClipboard struct{}

// WriteText implements ClipboardWriter.
func (SystemClipboard) WriteText(text string) error {
	if err := ClipboardAvailable(); err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// ReadText implements ClipboardReader.
func (SystemClipboard) ReadText() (string, error) {
	if err := ClipboardAvailable(); err != nil {
		return "", err
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return text, nil
}

// ClipboardAvailable reports whether the platform clipboard can be used.
func ClipboardAvailable() error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard utility found (install xclip, xsel, or wl-clipboard)", ErrClipboardUnavailable)
	}
	return nil
}

// clipboardMailbox serializes clipboard writes on one goroutine. Publish
// never blocks; when writes queue up only the latest value is written.
type clipboardMailbox struct {
	writer ClipboardWriter
	guard  sync.Locker
	logger *slog.Logger

	mu      sync.Mutex
	pending *string
	closed  bool
	warned  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func newClipboardMailbox(writer ClipboardWriter, guard sync.Locker, logger *slog.Logger) *clipboardMailbox {
	m := &clipboardMailbox{
		writer: writer,
		guard:  guard,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

// Publish replaces any pending text with text.
func (m *clipboardMailbox) Publish(text string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.pending = &text
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending text and stops the worker.
func (m *clipboardMailbox) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	close(m.done)
	m.wg.Wait()
}

func (m *clipboardMailbox) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.wake:
			m.flush()
		case <-m.done:
			m.flush()
			return
		}
	}
}

func (m *clipboardMailbox) flush() {
	m.mu.Lock()
	text := m.pending
	m.pending = nil
	m.mu.Unlock()
	if text == nil {
		return
	}

	m.guard.Lock()
	err := m.writer.WriteText(*text)
	m.guard.Unlock()
	if err == nil {
		m.logger.Debug("url copied to clipboard", logging.String(logging.FieldURL, *text))
		return
	}
	if errors.Is(err, ErrClipboardUnavailable) {
		m.mu.Lock()
		warned := m.warned
		m.warned = true
		m.mu.Unlock()
		if warned {
			return
		}
	}
	logging.WarnWithContext(m.logger, "clipboard write failed", "clipboard_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "copy the url from the log or the .txt sidecar"),
		logging.String(logging.FieldImpact, "url not placed on clipboard"))
}
