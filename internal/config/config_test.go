package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"pagesmith/internal/config"
)

func TestLoadWithoutFileUsesDefaultsAnchoredAtWorkingDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGESMITH_UPLOAD_HELPER", "")
	project := t.TempDir()
	t.Chdir(project)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "pagesmith", "config.toml")) {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	wd, _ := os.Getwd()
	if cfg.Paths.ConfigsDir != filepath.Join(wd, "configs") {
		t.Fatalf("unexpected configs dir %q", cfg.Paths.ConfigsDir)
	}
	if cfg.Paths.RecordsFile != filepath.Join(wd, "resources", "upload_records.jsonl") {
		t.Fatalf("unexpected records file %q", cfg.Paths.RecordsFile)
	}
	if cfg.Upload.Helper != "picgo" {
		t.Fatalf("unexpected helper %q", cfg.Upload.Helper)
	}
	if cfg.UploadTimeout().Seconds() != 30 {
		t.Fatalf("unexpected timeout %v", cfg.UploadTimeout())
	}
	if !cfg.IsExcluded("EXAMPLE.info") {
		t.Fatal("expected example.info to be excluded")
	}
	if cfg.Render.Labels != config.DefaultLabels() {
		t.Fatalf("unexpected labels %+v", cfg.Render.Labels)
	}
}

func TestLoadProjectFileResolvesRelativePaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)

	content := `
[paths]
configs_dir = "descriptions"
inbox_dir = "/srv/inbox"

[render]
skip_malformed_lines = true

[render.labels]
features = "  Highlights "

[upload]
patterns = ["*.PNG", "*.png", " ", "*.Jpg"]
workers = 0
identity = "NAME"
`
	if err := os.WriteFile(filepath.Join(project, "pagesmith.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "pagesmith.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	base := filepath.Dir(resolved)
	if cfg.Paths.ConfigsDir != filepath.Join(base, "descriptions") {
		t.Fatalf("unexpected configs dir %q", cfg.Paths.ConfigsDir)
	}
	if cfg.Paths.InboxDir != "/srv/inbox" {
		t.Fatalf("unexpected inbox dir %q", cfg.Paths.InboxDir)
	}
	if !cfg.Render.SkipMalformedLines {
		t.Fatal("expected skip_malformed_lines true")
	}
	if cfg.Render.Labels.Features != "Highlights" {
		t.Fatalf("expected trimmed label, got %q", cfg.Render.Labels.Features)
	}
	if cfg.Render.Labels.Screenshots != "Screenshots" {
		t.Fatalf("expected default for unset label, got %q", cfg.Render.Labels.Screenshots)
	}
	if diff := cmp.Diff([]string{"*.png", "*.jpg"}, cfg.Upload.Patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}
	if cfg.Upload.Workers != 2 {
		t.Fatalf("expected default workers, got %d", cfg.Upload.Workers)
	}
	if cfg.Upload.Identity != config.IdentityName {
		t.Fatalf("expected name identity, got %q", cfg.Upload.Identity)
	}
}

func TestLoadCustomPathAndHelperOverride(t *testing.T) {
	t.Setenv("PAGESMITH_UPLOAD_HELPER", "/opt/bin/uploader")
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[upload]\nhelper = \"picgo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Upload.Helper != "/opt/bin/uploader" {
		t.Fatalf("expected env helper override, got %q", cfg.Upload.Helper)
	}
	if cfg.Paths.FragmentsDir != filepath.Join(dir, "output") {
		t.Fatalf("unexpected fragments dir %q", cfg.Paths.FragmentsDir)
	}
}

func TestLoadClipboardFallback(t *testing.T) {
	t.Setenv("PAGESMITH_UPLOAD_HELPER", "")
	for _, tc := range []struct {
		name string
		body string
		want time.Duration
	}{
		{"default", "[upload]\nhelper = \"picgo\"\n", 10 * time.Second},
		{"disabled", "[upload]\nclipboard_fallback_seconds = 0\n", 0},
		{"negative clamps to disabled", "[upload]\nclipboard_fallback_seconds = -5\n", 0},
		{"custom", "[upload]\nclipboard_fallback_seconds = 3\n", 3 * time.Second},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pagesmith.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, _, _, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if got := cfg.ClipboardFallback(); got != tc.want {
				t.Fatalf("ClipboardFallback = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[upload]\nhelpr = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"identity", func(c *config.Config) { c.Upload.Identity = "inode" }, "upload.identity"},
		{"pattern path", func(c *config.Config) { c.Upload.Patterns = []string{"sub/*.png"} }, "upload.patterns"},
		{"pattern syntax", func(c *config.Config) { c.Upload.Patterns = []string{"[a-"} }, "upload.patterns"},
		{"shared outputs", func(c *config.Config) { c.Paths.PreviewsDir = c.Paths.FragmentsDir }, "distinct"},
		{"inbox equals uploaded", func(c *config.Config) { c.Paths.UploadedDir = c.Paths.InboxDir }, "distinct"},
		{"log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestCreateSampleDecodesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("sample drifted from defaults (-want +got):\n%s", diff)
	}
}

func TestEnsureDirectories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range append(cfg.OutputDirs(), cfg.Paths.InboxDir, cfg.Paths.UploadedDir, filepath.Dir(cfg.Paths.RecordsFile)) {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
