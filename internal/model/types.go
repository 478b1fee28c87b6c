// Package model defines the domain types for the voxel-archive CLI.
//
// These types are used throughout the application for passing data between
// the planner (internal/snapshot), the copier (internal/copier), and the
// command layer (internal/cli).
package model

import (
	"fmt"
	"strings"
)

// SortMode selects how snapshot candidates are ordered before the
// "latest" one is picked.
type SortMode string

const (
	// SortLexical orders candidate names as plain strings and reverses
	// the result. This is the historical behavior: "voxel-9" is examined
	// before "voxel-10" because '9' > '1' character-wise.
	SortLexical SortMode = "lexical"

	// SortNumeric orders candidates by their parsed version, highest first.
	// Ties (e.g. "voxel-5" and "voxel-05") fall back to reverse name order.
	SortNumeric SortMode = "numeric"
)

// String returns the string representation of SortMode.
func (m SortMode) String() string {
	return string(m)
}

// IsValid checks whether the SortMode value is one of the predefined modes.
func (m SortMode) IsValid() bool {
	switch m {
	case SortLexical, SortNumeric:
		return true
	default:
		return false
	}
}

// ParseSortMode converts a string to a SortMode.
// Returns an error if the string does not match any valid mode.
func ParseSortMode(s string) (SortMode, error) {
	mode := SortMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid sort mode: %q (valid: lexical, numeric)", s)
	}
	return mode, nil
}

// Candidate is a directory in the working directory whose name matches the
// snapshot naming pattern (prefix followed by one or more decimal digits).
type Candidate struct {
	// Name is the directory entry name, e.g. "voxel-03".
	Name string `json:"name"`

	// Version is the integer parsed from the trailing digit group.
	Version int `json:"version"`
}

// Plan is the fully computed archive operation. It is produced by a pure
// function over the directory listing, so it can be printed (plan command,
// --dry-run) or executed (root command) without recomputing anything.
type Plan struct {
	// WorkDir is the directory that was scanned and that contains both
	// the source and the destination.
	WorkDir string `json:"workDir"`

	// Candidates lists the matching snapshot directories in the order
	// they were examined. The first element is the one treated as latest.
	Candidates []Candidate `json:"candidates"`

	// Latest is the candidate the next version was derived from.
	// Nil when no snapshot exists yet.
	Latest *Candidate `json:"latest,omitempty"`

	// Version is the zero-padded version string of the new snapshot.
	Version string `json:"version"`

	// SortMode records which ordering selected Latest.
	SortMode SortMode `json:"sortMode"`

	// SourceName and DestName are directory names relative to WorkDir.
	SourceName string `json:"source"`
	DestName   string `json:"destination"`

	// SourcePath and DestPath are WorkDir-joined paths.
	SourcePath string `json:"sourcePath"`
	DestPath   string `json:"destinationPath"`
}

// CandidateNames returns the names of the plan's candidates in examined order.
// The result is never nil so that JSON output shows [] instead of null.
func (p *Plan) CandidateNames() []string {
	names := make([]string, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		names = append(names, c.Name)
	}
	return names
}

// ExitCode defines the CLI exit codes. These allow scripts to distinguish
// a bad configuration from a failed copy without parsing stderr.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigInvalid indicates the project configuration file or the
	// flag combination could not be used.
	ExitConfigInvalid ExitCode = 2

	// ExitScanFailed indicates the working directory could not be listed.
	ExitScanFailed ExitCode = 3

	// ExitSourceNotFound indicates the source directory does not exist
	// or is not a directory.
	ExitSourceNotFound ExitCode = 4

	// ExitCopyFailed indicates the recursive copy failed part way.
	// The partially written destination is left in place.
	ExitCopyFailed ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
