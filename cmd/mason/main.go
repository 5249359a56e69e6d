// Package main provides the entry point for the mason CLI.
package main

import (
	"context"
	"os"

	"github.com/masonbuild/mason/internal/cli"
)

// Version information set at build time via ldflags.
var (
	version = "" //nolint:gochecknoglobals // set via ldflags
	commit  = "" //nolint:gochecknoglobals // set via ldflags
	date    = "" //nolint:gochecknoglobals // set via ldflags
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}

	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(cli.ExitError)
	}
}
