// Package main hosts the pagesmith CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into calls on the
// batch orchestrator (generate, list, clean), the upload pipeline (upload,
// watch, records), and the preflight checks (status). It centralizes
// configuration resolution and logger setup so subcommands only wire
// components together.
//
// Running pagesmith without a subcommand generates every description file.
package main
