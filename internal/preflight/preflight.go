package preflight

import (
	"context"
	"path/filepath"

	"pagesmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every preflight check for the given config. It stops early
// when ctx is cancelled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	checks := []func() Result{
		func() Result { return CheckDirectoryReadable("Configs directory", cfg.Paths.ConfigsDir) },
		func() Result { return CheckDirectoryAccess("Fragments directory", cfg.Paths.FragmentsDir) },
		func() Result { return CheckDirectoryAccess("Previews directory", cfg.Paths.PreviewsDir) },
		func() Result { return CheckDirectoryAccess("Shortcodes directory", cfg.Paths.ShortcodesDir) },
		func() Result { return CheckDirectoryAccess("Inbox directory", cfg.Paths.InboxDir) },
		func() Result { return CheckDirectoryAccess("Uploaded directory", cfg.Paths.UploadedDir) },
		func() Result { return CheckDirectoryAccess("Records directory", filepath.Dir(cfg.Paths.RecordsFile)) },
		func() Result { return CheckHelper(cfg.Upload.Helper) },
	}
	if cfg.Upload.Clipboard {
		checks = append(checks, CheckClipboard)
	}

	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if ctx.Err() != nil {
			break
		}
		results = append(results, check())
	}
	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
