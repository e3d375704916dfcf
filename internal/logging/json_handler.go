package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// newJSONHandler backs logging.format = "json". Top-level keys are
// rewritten by jsonAttr; grouped attributes pass through untouched.
func newJSONHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: jsonAttr,
	})
}

// jsonAttr stores the time as UTC RFC 3339 under "ts", lower-cases the
// level and shortens the source to file:line.
func jsonAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() != slog.KindTime {
			return attr
		}
		return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		return slog.String(slog.LevelKey, strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		src, ok := attr.Value.Any().(*slog.Source)
		if !ok || src == nil {
			return attr
		}
		return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
	}
	return attr
}
