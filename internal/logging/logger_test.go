package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagesmith/internal/config"
	"pagesmith/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "upload").Info("image uploaded",
		logging.String(logging.FieldPath, "shots/a b.png"),
		logging.Int("attempt", 2),
	)

	line := readLog(t, logPath)
	if !strings.Contains(line, "INFO  upload: image uploaded") {
		t.Fatalf("expected level, component and message, got %q", line)
	}
	if !strings.Contains(line, `path="shots/a b.png"`) {
		t.Fatalf("expected quoted path field, got %q", line)
	}
	if !strings.Contains(line, "attempt=2") {
		t.Fatalf("expected int field, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix only, got %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("file output must not be colored, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filtered.log")
	logger, err := logging.New(logging.Options{Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden") {
		t.Fatalf("info line should be filtered, got %q", content)
	}
	if !strings.Contains(content, "WARN  shown") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error("record write failed", logging.Error(errors.New("disk full")), logging.String(logging.FieldURL, "https://x/a.png"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "error" {
		t.Fatalf("expected lower-case level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["url"] != "https://x/a.png" {
		t.Fatalf("expected url field, got %v", payload["url"])
	}
	if payload["error"] != "disk full" {
		t.Fatalf("expected error text, got %v", payload["error"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "nested", "pagesmith.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("written to file")

	if content := readLog(t, cfg.Logging.File); !strings.Contains(content, "written to file") {
		t.Fatalf("expected log file content, got %q", content)
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.ContextWithRunID(context.Background(), "run-123")
	logging.WithContext(ctx, logger).Info("tagged")

	if content := readLog(t, logPath); !strings.Contains(content, "run_id=run-123") {
		t.Fatalf("expected run id field, got %q", content)
	}
	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "clipboard unavailable", "clipboard_unavailable",
		logging.String(logging.FieldImpact, "URL not copied"))

	content := readLog(t, logPath)
	for _, want := range []string{"event_type=clipboard_unavailable", `error_hint="check logs for details"`, `impact="URL not copied"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %q", want, content)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
	logging.NewComponentLogger(nil, "x").Info("discarded")
}
