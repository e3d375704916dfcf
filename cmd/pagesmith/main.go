package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit status is 1 on any failure and 130 when the command ended with a
// cancelled context.
const (
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	err := newRootCommand().Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		fmt.Fprintf(os.Stderr, "pagesmith: %v\n", err)
		return exitFailure
	}
}
