// Package config loads, normalizes, and validates pagesmith configuration.
//
// It supplies defaults that mirror the conventional project layout
// (configs/, output/, previews/, contents/, resources/), reads TOML files,
// anchors relative paths at the configuration file's directory, and honours
// the PAGESMITH_UPLOAD_HELPER environment override. Obtain settings through
// this package so downstream code receives absolute paths, lower-cased upload
// patterns, and clear validation errors.
package config
