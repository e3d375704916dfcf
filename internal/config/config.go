package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories and files pagesmith reads and writes.
type Paths struct {
	ConfigsDir    string   `toml:"configs_dir"`
	FragmentsDir  string   `toml:"fragments_dir"`
	PreviewsDir   string   `toml:"previews_dir"`
	ShortcodesDir string   `toml:"shortcodes_dir"`
	InboxDir      string   `toml:"inbox_dir"`
	UploadedDir   string   `toml:"uploaded_dir"`
	RecordsFile   string   `toml:"records_file"`
	ConfigGlob    string   `toml:"config_glob"`
	ConfigExclude []string `toml:"config_exclude"`
}

// Labels are the headings and info-panel captions used by the renderer.
type Labels struct {
	Introduction   string `toml:"introduction"`
	Features       string `toml:"features"`
	Screenshots    string `toml:"screenshots"`
	Downloads      string `toml:"downloads"`
	Extra          string `toml:"extra"`
	Title          string `toml:"title"`
	DisplayName    string `toml:"display_name"`
	Version        string `toml:"version"`
	Filename       string `toml:"filename"`
	ExtractionCode string `toml:"extraction_code"`
}

// Render contains parser and renderer settings.
type Render struct {
	Lang               string `toml:"lang"`
	SkipMalformedLines bool   `toml:"skip_malformed_lines"`
	Labels             Labels `toml:"labels"`
}

// Upload contains image pipeline settings.
type Upload struct {
	Helper          string   `toml:"helper"`
	HelperArgs      []string `toml:"helper_args"`
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	Identity        string   `toml:"identity"`
	Patterns        []string `toml:"patterns"`
	SettleMillis    int      `toml:"settle_millis"`
	Workers         int      `toml:"workers"`
	Clipboard       bool     `toml:"clipboard"`
	WriteURLSidecar bool     `toml:"write_url_sidecar"`
	// ClipboardFallbackSeconds bounds how long to watch the clipboard for a
	// URL when the helper prints none. Zero disables the fallback.
	ClipboardFallbackSeconds int `toml:"clipboard_fallback_seconds"`
}

// Logging contains logger settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for pagesmith.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Render  Render  `toml:"render"`
	Upload  Upload  `toml:"upload"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pagesmith/config.toml")
}

// Load locates, parses, and validates a configuration file. Relative paths in
// the file are resolved against the file's directory; without a file they are
// resolved against the working directory.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
		baseDir = filepath.Dir(resolvedPath)
	}

	if err := cfg.normalize(baseDir); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("pagesmith.toml")
	if err != nil {
		return "", false, err
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output, inbox, and uploaded directories and
// the parent of the records file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.FragmentsDir,
		c.Paths.PreviewsDir,
		c.Paths.ShortcodesDir,
		c.Paths.InboxDir,
		c.Paths.UploadedDir,
		filepath.Dir(c.Paths.RecordsFile),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OutputDirs lists the three artifact directories in fragment, preview,
// shortcode order.
func (c *Config) OutputDirs() []string {
	return []string{c.Paths.FragmentsDir, c.Paths.PreviewsDir, c.Paths.ShortcodesDir}
}

// UploadTimeout returns the per-invocation helper timeout.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Upload.TimeoutSeconds) * time.Second
}

// ClipboardFallback returns how long to poll the clipboard for a helper URL.
func (c *Config) ClipboardFallback() time.Duration {
	return time.Duration(c.Upload.ClipboardFallbackSeconds) * time.Second
}

// SettleDelay returns how long a watched file must stay quiet before upload.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Upload.SettleMillis) * time.Millisecond
}

// IsExcluded reports whether a description file name is listed in config_exclude.
func (c *Config) IsExcluded(name string) bool {
	for _, excluded := range c.Paths.ConfigExclude {
		if strings.EqualFold(excluded, name) {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// resolvePath expands ~ and anchors relative paths at baseDir.
func resolvePath(baseDir, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" || strings.HasPrefix(pathValue, "~") || filepath.IsAbs(pathValue) {
		return expandPath(pathValue)
	}
	return expandPath(filepath.Join(baseDir, pathValue))
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
