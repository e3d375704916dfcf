// Package batch turns a directory of description files into rendered
// artifacts.
//
// The Orchestrator lists description files matching the configured glob,
// parses each one with the entry package, renders it with the render
// package, and writes the fragment, preview page, and shortcode block into
// their output directories. A failing file is reported and skipped; the
// remaining files are still generated.
package batch
