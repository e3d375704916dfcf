package batch

import (
	"errors"
	"fmt"
)

// ErrUnknownEntry is returned by Generate when no description file has the
// requested id.
var ErrUnknownEntry = errors.New("unknown entry")

// ErrAmbiguousEntry is returned by Generate when an id names more than one
// description file.
var ErrAmbiguousEntry = errors.New("ambiguous entry")

// ErrOutputCollision marks entries whose titles map to the same artifact
// file names. None of them is written.
var ErrOutputCollision = errors.New("artifact name collision")

// EntryError attaches the entry id to a parse, render, or write failure.
type EntryError struct {
	ID    string
	Stage string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.ID, e.Stage, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
