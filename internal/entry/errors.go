package entry

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSection marks an unparsable section header.
	ErrMalformedSection = errors.New("malformed section header")
	// ErrMalformedLine marks a screenshot or download line that does not match its shape.
	ErrMalformedLine = errors.New("malformed line")
	// ErrMissingTitle is returned when no title, name, or default title is available.
	ErrMissingTitle = errors.New("missing title")
	// ErrUnsafeTitle is returned when a title sanitizes to an empty filename.
	ErrUnsafeTitle = errors.New("title has no filename-safe characters")
)

// SectionError reports a malformed section header.
type SectionError struct {
	Source string
	Line   int
	Text   string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s: %s %q", location(e.Source, e.Line), ErrMalformedSection, e.Text)
}

func (e *SectionError) Unwrap() error { return ErrMalformedSection }

// LineError reports a malformed line inside the screenshots or download links section.
type LineError struct {
	Source  string
	Section string
	Line    int
	Text    string
	Reason  string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: [%s] %s: %s %q", location(e.Source, e.Line), e.Section, ErrMalformedLine, e.Reason, e.Text)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

func location(source string, line int) string {
	if source == "" {
		return fmt.Sprintf("line %d", line)
	}
	return fmt.Sprintf("%s:%d", source, line)
}
