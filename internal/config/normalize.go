package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize(baseDir string) error {
	if err := c.normalizePaths(baseDir); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeUpload()
	c.normalizeLogging(baseDir)
	return nil
}

func (c *Config) normalizePaths(baseDir string) error {
	targets := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.configs_dir", &c.Paths.ConfigsDir, defaultConfigsDir},
		{"paths.fragments_dir", &c.Paths.FragmentsDir, defaultFragmentsDir},
		{"paths.previews_dir", &c.Paths.PreviewsDir, defaultPreviewsDir},
		{"paths.shortcodes_dir", &c.Paths.ShortcodesDir, defaultShortcodesDir},
		{"paths.inbox_dir", &c.Paths.InboxDir, defaultInboxDir},
		{"paths.uploaded_dir", &c.Paths.UploadedDir, defaultUploadedDir},
		{"paths.records_file", &c.Paths.RecordsFile, defaultRecordsFile},
	}
	for _, target := range targets {
		if strings.TrimSpace(*target.value) == "" {
			*target.value = target.fallback
		}
		resolved, err := resolvePath(baseDir, *target.value)
		if err != nil {
			return fmt.Errorf("%s: %w", target.key, err)
		}
		*target.value = resolved
	}

	c.Paths.ConfigGlob = strings.TrimSpace(c.Paths.ConfigGlob)
	if c.Paths.ConfigGlob == "" {
		c.Paths.ConfigGlob = defaultConfigGlob
	}
	excluded := c.Paths.ConfigExclude[:0]
	for _, name := range c.Paths.ConfigExclude {
		if name = strings.TrimSpace(name); name != "" {
			excluded = append(excluded, name)
		}
	}
	c.Paths.ConfigExclude = excluded
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.Lang = strings.TrimSpace(c.Render.Lang)
	if c.Render.Lang == "" {
		c.Render.Lang = defaultRenderLanguage
	}
	defaults := DefaultLabels()
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	labels := &c.Render.Labels
	fill(&labels.Introduction, defaults.Introduction)
	fill(&labels.Features, defaults.Features)
	fill(&labels.Screenshots, defaults.Screenshots)
	fill(&labels.Downloads, defaults.Downloads)
	fill(&labels.Extra, defaults.Extra)
	fill(&labels.Title, defaults.Title)
	fill(&labels.DisplayName, defaults.DisplayName)
	fill(&labels.Version, defaults.Version)
	fill(&labels.Filename, defaults.Filename)
	fill(&labels.ExtractionCode, defaults.ExtractionCode)
}

func (c *Config) normalizeUpload() {
	if value, ok := os.LookupEnv("PAGESMITH_UPLOAD_HELPER"); ok && strings.TrimSpace(value) != "" {
		c.Upload.Helper = value
	}
	c.Upload.Helper = strings.TrimSpace(c.Upload.Helper)
	if c.Upload.Helper == "" {
		c.Upload.Helper = defaultUploadHelper
	}
	if len(c.Upload.HelperArgs) == 0 {
		c.Upload.HelperArgs = defaultHelperArgs()
	}
	if c.Upload.TimeoutSeconds <= 0 {
		c.Upload.TimeoutSeconds = defaultUploadTimeout
	}
	c.Upload.Identity = strings.ToLower(strings.TrimSpace(c.Upload.Identity))
	if c.Upload.Identity == "" {
		c.Upload.Identity = defaultIdentityMode
	}
	if c.Upload.SettleMillis < 0 {
		c.Upload.SettleMillis = 0
	}
	if c.Upload.ClipboardFallbackSeconds < 0 {
		c.Upload.ClipboardFallbackSeconds = 0
	}
	if c.Upload.Workers <= 0 {
		c.Upload.Workers = defaultUploadWorkers
	}

	seen := make(map[string]struct{}, len(c.Upload.Patterns))
	patterns := make([]string, 0, len(c.Upload.Patterns))
	for _, pattern := range c.Upload.Patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if _, ok := seen[pattern]; ok {
			continue
		}
		seen[pattern] = struct{}{}
		patterns = append(patterns, pattern)
	}
	if len(patterns) == 0 {
		patterns = defaultPatterns()
	}
	c.Upload.Patterns = patterns
}

func (c *Config) normalizeLogging(baseDir string) {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if resolved, err := resolvePath(baseDir, c.Logging.File); err == nil {
			c.Logging.File = resolved
		}
	}
}
