package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pagesmith/internal/config"
	"pagesmith/internal/entry"
	"pagesmith/internal/fileutil"
	"pagesmith/internal/logging"
	"pagesmith/internal/render"
)

// Artifact file name suffixes.
const (
	FragmentSuffix  = ".html"
	PreviewSuffix   = "_preview.html"
	ShortcodeSuffix = "_wordpress.txt"
)

// Listing describes one description file.
type Listing struct {
	ID          string
	File        string
	Title       string
	DisplayName string
	Version     string
	// Err is the parse error, if the file could not be parsed.
	Err          error
	HasFragment  bool
	HasPreview   bool
	HasShortcode bool
}

// Output is the result of generating one entry.
type Output struct {
	ID        string
	Source    string
	Entry     entry.Entry
	Fragment  string
	Preview   string
	Shortcode string
	// Skipped lists malformed lines dropped in lenient mode.
	Skipped []*entry.LineError
}

// Report aggregates a GenerateAll pass.
type Report struct {
	Generated []Output
	Failures  []error
}

// Err joins every failure, or returns nil when all entries were generated.
func (r Report) Err() error {
	return errors.Join(r.Failures...)
}

// Orchestrator drives parse, render, and write for a configs directory.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds an orchestrator over cfg.
func New(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "batch"),
	}
}

// IDs returns the sorted ids of every description file, excluding the names
// listed in paths.config_exclude.
func (o *Orchestrator) IDs() ([]string, error) {
	files, err := o.sources()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, file := range files {
		ids = append(ids, o.idFor(file))
	}
	return ids, nil
}

// List parses every description file and reports which artifacts exist.
func (o *Orchestrator) List() ([]Listing, error) {
	files, err := o.sources()
	if err != nil {
		return nil, err
	}
	listings := make([]Listing, 0, len(files))
	for _, file := range files {
		listing := Listing{ID: o.idFor(file), File: file}
		parsed, _, err := o.parse(file)
		if err != nil {
			listing.Err = err
			listings = append(listings, listing)
			continue
		}
		listing.Title = parsed.Title
		listing.DisplayName = parsed.DisplayName
		listing.Version = parsed.Version
		paths := o.artifactPaths(parsed.Filename())
		listing.HasFragment = fileExists(paths.Fragment)
		listing.HasPreview = fileExists(paths.Preview)
		listing.HasShortcode = fileExists(paths.Shortcode)
		listings = append(listings, listing)
	}
	return listings, nil
}

// Generate parses, renders, and writes one entry. id is the description file
// path relative to the configs directory, with or without its extension. A
// bare file name or stem also works when it names exactly one file.
func (o *Orchestrator) Generate(ctx context.Context, id string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	file, err := o.resolve(id)
	if err != nil {
		return Output{}, err
	}
	j, err := o.load(file)
	if err != nil {
		return Output{}, err
	}
	return o.write(ctx, j)
}

// GenerateAll generates every entry. A failing entry is logged and the rest
// are still generated; the returned error joins all failures. Entries whose
// titles produce the same artifact names all fail with ErrOutputCollision.
func (o *Orchestrator) GenerateAll(ctx context.Context) (Report, error) {
	files, err := o.sources()
	if err != nil {
		return Report{}, err
	}
	logger := logging.WithContext(ctx, o.logger)
	if len(files) == 0 {
		logging.WarnWithContext(logger, "no description files found", "no_entries",
			logging.String(logging.FieldPath, o.cfg.Paths.ConfigsDir),
			logging.String(logging.FieldErrorHint, "add "+o.cfg.Paths.ConfigGlob+" files to the configs directory"),
			logging.String(logging.FieldImpact, "nothing generated"))
	}

	var report Report
	failed := func(id string, err error) {
		logging.ErrorWithContext(logger, "entry generation failed", "entry_failed",
			logging.String(logging.FieldEntry, id),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the description file and run generate again"))
		report.Failures = append(report.Failures, err)
	}

	jobs := make([]job, 0, len(files))
	// Keyed case-insensitively so the check also holds on case-folding filesystems.
	owners := make(map[string][]string)
	for _, file := range files {
		j, err := o.load(file)
		if err != nil {
			failed(o.idFor(file), err)
			continue
		}
		jobs = append(jobs, j)
		key := strings.ToLower(j.entry.Filename())
		owners[key] = append(owners[key], j.id)
	}

	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, err)
			break
		}
		name := j.entry.Filename()
		if ids := owners[strings.ToLower(name)]; len(ids) > 1 {
			failed(j.id, &EntryError{ID: j.id, Stage: "collision",
				Err: fmt.Errorf("%w: %s all render to %q", ErrOutputCollision, strings.Join(ids, ", "), name)})
			continue
		}
		out, err := o.write(ctx, j)
		if err != nil {
			failed(j.id, err)
			continue
		}
		report.Generated = append(report.Generated, out)
	}

	logger.Info("generation complete",
		logging.String(logging.FieldEventType, "generate_all_complete"),
		logging.Int("generated", len(report.Generated)),
		logging.Int("failed", len(report.Failures)))
	return report, report.Err()
}

// job is a parsed entry waiting to be rendered.
type job struct {
	id      string
	file    string
	entry   entry.Entry
	skipped []*entry.LineError
}

func (o *Orchestrator) load(file string) (job, error) {
	id := o.idFor(file)
	parsed, skipped, err := o.parse(file)
	if err != nil {
		return job{}, &EntryError{ID: id, Stage: "parse", Err: err}
	}
	return job{id: id, file: file, entry: parsed, skipped: skipped}, nil
}

func (o *Orchestrator) write(ctx context.Context, j job) (Output, error) {
	logger := logging.WithContext(ctx, o.logger).With(logging.String(logging.FieldEntry, j.id))
	for _, lineErr := range j.skipped {
		logging.WarnWithContext(logger, "malformed line skipped", "malformed_line_skipped",
			logging.Int("line", lineErr.Line),
			logging.String("section", lineErr.Section),
			logging.String("reason", lineErr.Reason),
			logging.String(logging.FieldErrorHint, "fix the line in the description file"),
			logging.String(logging.FieldImpact, "line omitted from rendered output"))
	}

	safe := j.entry.Filename()
	paths := o.artifactPaths(safe)
	artifacts := render.Render(j.entry,
		render.WithLabels(render.Labels(o.cfg.Render.Labels)),
		render.WithLanguage(o.cfg.Render.Lang),
		render.WithFilenames(render.Filenames{
			Fragment:  filepath.Base(paths.Fragment),
			Preview:   filepath.Base(paths.Preview),
			Shortcode: filepath.Base(paths.Shortcode),
		}))

	writes := []struct{ path, contents string }{
		{paths.Fragment, artifacts.Fragment},
		{paths.Preview, artifacts.Preview},
		{paths.Shortcode, artifacts.Shortcode},
	}
	for _, w := range writes {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return Output{}, &EntryError{ID: j.id, Stage: "write", Err: fmt.Errorf("create output directory: %w", err)}
		}
		if err := fileutil.WriteFileAtomic(w.path, []byte(w.contents), 0o644); err != nil {
			return Output{}, &EntryError{ID: j.id, Stage: "write", Err: err}
		}
	}

	logger.Info("entry generated",
		logging.String(logging.FieldEventType, "entry_generated"),
		logging.String("title", j.entry.Title),
		logging.String("filename", safe))
	return Output{
		ID:        j.id,
		Source:    j.file,
		Entry:     j.entry,
		Fragment:  paths.Fragment,
		Preview:   paths.Preview,
		Shortcode: paths.Shortcode,
		Skipped:   j.skipped,
	}, nil
}

// Clean removes regular files from the three output directories and returns
// how many were removed. Missing directories are ignored.
func (o *Orchestrator) Clean() (int, error) {
	removed := 0
	var errs []error
	for _, dir := range o.cfg.OutputDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("read %s: %w", dir, err))
			continue
		}
		for _, item := range entries {
			if !item.Type().IsRegular() {
				continue
			}
			path := filepath.Join(dir, item.Name())
			if err := os.Remove(path); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
				continue
			}
			removed++
		}
	}
	o.logger.Info("output cleaned",
		logging.String(logging.FieldEventType, "output_cleaned"),
		logging.Int("removed", removed))
	return removed, errors.Join(errs...)
}

type artifactPaths struct {
	Fragment  string
	Preview   string
	Shortcode string
}

func (o *Orchestrator) artifactPaths(safe string) artifactPaths {
	return artifactPaths{
		Fragment:  filepath.Join(o.cfg.Paths.FragmentsDir, safe+FragmentSuffix),
		Preview:   filepath.Join(o.cfg.Paths.PreviewsDir, safe+PreviewSuffix),
		Shortcode: filepath.Join(o.cfg.Paths.ShortcodesDir, safe+ShortcodeSuffix),
	}
}

func (o *Orchestrator) parse(file string) (entry.Entry, []*entry.LineError, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return entry.Entry{}, nil, fmt.Errorf("read %s: %w", filepath.Base(file), err)
	}
	opts := []entry.Option{
		entry.WithSource(filepath.Base(file)),
		entry.WithDefaultTitle(stem(file)),
	}
	var skipped []*entry.LineError
	if o.cfg.Render.SkipMalformedLines {
		opts = append(opts, entry.SkipMalformedLines(func(lineErr *entry.LineError) {
			skipped = append(skipped, lineErr)
		}))
	}
	parsed, err := entry.Parse(string(data), opts...)
	return parsed, skipped, err
}

func (o *Orchestrator) sources() ([]string, error) {
	dir := o.cfg.Paths.ConfigsDir
	matches, err := doublestar.Glob(os.DirFS(dir), o.cfg.Paths.ConfigGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		if o.cfg.IsExcluded(filepath.Base(match)) {
			continue
		}
		files = append(files, filepath.Join(dir, filepath.FromSlash(match)))
	}
	slices.Sort(files)
	return files, nil
}

func (o *Orchestrator) resolve(id string) (string, error) {
	files, err := o.sources()
	if err != nil {
		return "", err
	}
	id = filepath.ToSlash(strings.TrimSpace(id))

	var exact, loose []string
	for _, file := range files {
		switch {
		case o.idFor(file) == id || o.relative(file) == id:
			exact = append(exact, file)
		case stem(file) == id || filepath.Base(file) == id:
			loose = append(loose, file)
		}
	}
	candidates := exact
	if len(candidates) == 0 {
		candidates = loose
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: %q (run list to see available entries)", ErrUnknownEntry, id)
	case 1:
		return candidates[0], nil
	}
	names := make([]string, 0, len(candidates))
	for _, file := range candidates {
		names = append(names, o.relative(file))
	}
	return "", fmt.Errorf("%w: %q matches %s", ErrAmbiguousEntry, id, strings.Join(names, ", "))
}

// relative returns file relative to the configs directory, slash separated.
func (o *Orchestrator) relative(file string) string {
	rel, err := filepath.Rel(o.cfg.Paths.ConfigsDir, file)
	if err != nil {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}

func (o *Orchestrator) idFor(file string) string {
	rel := o.relative(file)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
