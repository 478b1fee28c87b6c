// Package main is the entry point for the voxel-archive CLI.
//
// Run with no arguments from the directory that holds voxel-main, it copies
// voxel-main to the next numbered snapshot (voxel-00, voxel-01, ...). All
// functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags.
package main

import (
	"github.com/shinji-kodama/voxel-archive/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
