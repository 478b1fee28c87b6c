// Package model defines the domain types and value objects for the
// voxel-archive CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Candidate, Plan) are ephemeral: they are computed fresh on
// every invocation from the directory names present on disk, and nothing
// is persisted beyond the snapshot directories themselves.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
