package records

import (
	"errors"
	"fmt"
)

// ErrRecordWrite marks a failure to persist an upload record.
var ErrRecordWrite = errors.New("record write failed")

// WriteError reports a failed append. URL carries the already-obtained
// remote URL so callers can still surface it.
type WriteError struct {
	Path     string
	Identity string
	URL      string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: persist %s (url %s) to %s: %v", ErrRecordWrite, e.Identity, e.URL, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRecordWrite}
	}
	return []error{ErrRecordWrite, e.Err}
}
