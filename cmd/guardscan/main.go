// Package main is the entry point for the guardscan CLI tool.
package main

import (
	"os"
	"runtime"

	"github.com/guardscan/guardscan/internal/buildinfo"
	"github.com/guardscan/guardscan/internal/cli"
)

// Build-time metadata injected via ldflags, copied into internal/buildinfo
// at startup so the rest of the program only ever reads it from one place.
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = runtime.Version()
)

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
	buildinfo.GoVersion = goVersion

	os.Exit(cli.Execute())
}
