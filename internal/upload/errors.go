package upload

import (
	"errors"
	"fmt"
)

var (
	// ErrUpload marks a per-file processing failure. The file stays in the inbox.
	ErrUpload = errors.New("upload failed")
	// ErrNoURL is returned when the helper exits cleanly without printing a URL.
	ErrNoURL = errors.New("helper returned no url")
	// ErrClipboardUnavailable is returned when the platform has no usable clipboard.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrWatcherRunning is returned when another watcher holds the inbox lock.
	ErrWatcherRunning = errors.New("another watcher is already running for this inbox")
)

// Failure reports why one inbox file could not be processed.
type Failure struct {
	Path  string
	Stage string
	// URL is set when the helper succeeded but a later step failed.
	URL string
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrUpload, f.Path, f.Stage, f.Err)
}

func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{ErrUpload}
	}
	return []error{ErrUpload, f.Err}
}
