package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEntry is the key for description file identifiers (file stem).
	FieldEntry = "entry"
	// FieldPath is the key for filesystem paths.
	FieldPath = "path"
	// FieldIdentity is the key for image identities in the record store.
	FieldIdentity = "identity"
	// FieldURL is the key for remote image URLs.
	FieldURL = "url"
	// FieldState is the key for upload state transitions.
	FieldState = "state"
	// FieldRunID correlates every line emitted by one command invocation.
	FieldRunID = "run_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type runIDKey struct{}

// NewRunID returns a fresh identifier for one command invocation.
func NewRunID() string {
	return uuid.NewString()
}

// ContextWithRunID stores a run identifier on ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run identifier stored on ctx, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext returns a logger augmented with structured fields derived from ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RunIDFromContext(ctx); ok {
		return logger.With(String(FieldRunID, id))
	}
	return logger
}
