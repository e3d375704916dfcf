package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	outputs := map[string]string{
		"paths.fragments_dir":  c.Paths.FragmentsDir,
		"paths.previews_dir":   c.Paths.PreviewsDir,
		"paths.shortcodes_dir": c.Paths.ShortcodesDir,
	}
	seen := make(map[string]string, len(outputs))
	for _, key := range []string{"paths.fragments_dir", "paths.previews_dir", "paths.shortcodes_dir"} {
		dir := filepath.Clean(outputs[key])
		if other, ok := seen[dir]; ok {
			return fmt.Errorf("%s and %s must be distinct directories", other, key)
		}
		seen[dir] = key
	}
	if filepath.Clean(c.Paths.InboxDir) == filepath.Clean(c.Paths.UploadedDir) {
		return errors.New("paths.inbox_dir and paths.uploaded_dir must be distinct directories")
	}
	if !doublestar.ValidatePattern(c.Paths.ConfigGlob) {
		return fmt.Errorf("paths.config_glob: invalid pattern %q", c.Paths.ConfigGlob)
	}
	return nil
}

func (c *Config) validateUpload() error {
	switch c.Upload.Identity {
	case IdentityContent, IdentityName:
	default:
		return fmt.Errorf("upload.identity must be %q or %q, got %q", IdentityContent, IdentityName, c.Upload.Identity)
	}
	for _, pattern := range c.Upload.Patterns {
		if strings.Contains(pattern, "/") {
			return fmt.Errorf("upload.patterns: %q must match file names, not paths", pattern)
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("upload.patterns: invalid pattern %q", pattern)
		}
	}
	for _, arg := range c.Upload.HelperArgs {
		if strings.Count(arg, PathPlaceholder) > 1 {
			return fmt.Errorf("upload.helper_args: %q repeats %s", arg, PathPlaceholder)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
