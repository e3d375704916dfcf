package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pagesmith/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live in a per-test temp
// directory. Clipboard publishing is off so tests never touch the desktop.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ConfigsDir = filepath.Join(base, "configs")
	cfgVal.Paths.FragmentsDir = filepath.Join(base, "output")
	cfgVal.Paths.PreviewsDir = filepath.Join(base, "previews")
	cfgVal.Paths.ShortcodesDir = filepath.Join(base, "contents")
	cfgVal.Paths.InboxDir = filepath.Join(base, "resources", "to_upload")
	cfgVal.Paths.UploadedDir = filepath.Join(base, "resources", "uploaded")
	cfgVal.Paths.RecordsFile = filepath.Join(base, "resources", "upload_records.jsonl")
	cfgVal.Upload.Clipboard = false
	cfgVal.Upload.ClipboardFallbackSeconds = 0
	cfgVal.Upload.SettleMillis = 20

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithUploadHelper overrides the helper binary and its arguments.
func WithUploadHelper(helper string, args ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Upload.Helper = helper
		if len(args) > 0 {
			b.cfg.Upload.HelperArgs = args
		}
	}
}

// WithIdentityMode sets upload.identity.
func WithIdentityMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Upload.Identity = mode
	}
}

// WithEntry writes a description file into the configs directory.
func WithEntry(name, contents string) ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, filepath.Join(b.cfg.Paths.ConfigsDir, name), contents)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default upload helper is
// stubbed. Each stub prints a URL derived from its last argument.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Upload.Helper}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nfor last; do :; done\necho \"[OK] https://img.example.test/$(basename \"$last\")\"\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ConfigsDir)
}
