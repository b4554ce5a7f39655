package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"prdeck/internal/cmd"
)

// Build information injected at build time via ldflags
var (
	Commit  = "unknown"
	Version = "dev"
)

const description = "Review and merge status of GitHub pull requests, in the terminal or over HTTP"

func main() {
	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("prdeck"),
		kong.Description(description),
		kong.Vars{
			"version": fmt.Sprintf("prdeck %s (commit: %s)", Version, Commit),
		},
		kong.UsageOnError(),
		kong.Bind(&cli),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
