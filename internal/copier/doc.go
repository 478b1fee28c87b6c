// Package copier implements the recursive directory copy that turns the
// working directory into a snapshot.
//
// The copy preserves directory structure, file contents, permission bits
// and symlinks. It merges into an existing destination, overwriting files
// with the same relative path. Exclude patterns use doublestar syntax
// (github.com/bmatcuk/doublestar/v4), so "target/**" skips a Cargo build
// directory.
//
// There is no rollback: if a copy fails part way, whatever was written
// stays on disk.
package copier
