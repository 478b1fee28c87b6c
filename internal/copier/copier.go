package copier

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/shinji-kodama/voxel-archive/internal/model"
)

// Options controls a Copy.
type Options struct {
	// Excludes lists doublestar patterns, relative to the source root and
	// using forward slashes. A matching directory is skipped entirely.
	Excludes []string
}

// Stats summarizes what a Copy wrote.
type Stats struct {
	Dirs     int   `json:"dirs"`
	Files    int   `json:"files"`
	Symlinks int   `json:"symlinks"`
	Skipped  int   `json:"skipped"`
	Bytes    int64 `json:"bytes"`
}

// ValidateExcludes reports the first malformed pattern, if any.
func ValidateExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Copy recursively copies the directory src to dst.
//
// dst is created if absent. If it already exists the tree is merged into
// it. src is only read.
//
// A missing src (or one that is not a directory) returns a CLIError with
// ExitSourceNotFound; any failure during the walk returns ExitCopyFailed.
func Copy(src, dst string, opts Options) (Stats, error) {
	var stats Stats

	if err := ValidateExcludes(opts.Excludes); err != nil {
		return stats, model.WrapCLIError(model.ExitConfigInvalid, "cannot copy", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, model.WrapCLIError(model.ExitSourceNotFound,
				fmt.Sprintf("source directory not found: %s", src), err)
		}
		return stats, model.WrapCLIError(model.ExitCopyFailed,
			fmt.Sprintf("cannot stat source %s", src), err)
	}
	if !info.IsDir() {
		return stats, model.NewCLIError(model.ExitSourceNotFound,
			fmt.Sprintf("source is not a directory: %s", src))
	}

	// WalkDir does not follow a symlinked root.
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return stats, model.WrapCLIError(model.ExitCopyFailed,
			fmt.Sprintf("cannot resolve source %s", src), err)
	}

	if err := checkNotInside(root, dst); err != nil {
		return stats, err
	}

	c := &copier{src: root, dst: dst, excludes: opts.Excludes}
	if err := filepath.WalkDir(root, c.visit); err != nil {
		return c.stats, model.WrapCLIError(model.ExitCopyFailed,
			fmt.Sprintf("copy %s to %s failed", src, dst), err)
	}

	// Directory modes are applied last so that read-only source
	// directories do not block writing their children.
	for i := len(c.dirModes) - 1; i >= 0; i-- {
		d := c.dirModes[i]
		if err := os.Chmod(d.path, d.mode); err != nil {
			return c.stats, model.WrapCLIError(model.ExitCopyFailed,
				fmt.Sprintf("cannot set mode on %s", d.path), err)
		}
	}

	return c.stats, nil
}

// checkNotInside refuses a destination that resolves to the source root or
// to a path below it. Walking such a tree would copy the destination into
// itself.
func checkNotInside(root, dst string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return model.WrapCLIError(model.ExitCopyFailed,
			fmt.Sprintf("cannot resolve source %s", root), err)
	}
	resolved, err := resolvePath(dst)
	if err != nil {
		return model.WrapCLIError(model.ExitCopyFailed,
			fmt.Sprintf("cannot resolve destination %s", dst), err)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("destination %s is inside source %s", dst, root))
	}
	return nil
}

// resolvePath evaluates symlinks in path. A path that does not exist yet is
// resolved through its nearest existing ancestor.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	resolvedParent, err := resolvePath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}

// clearTarget removes an existing destination entry before it is
// rewritten. A real directory is kept when keepDir is set so that merging
// works. Anything else, notably a symlink or hard link left in an older
// snapshot, is unlinked rather than written through, so whatever it points
// to (possibly the source itself) is never modified.
func clearTarget(target string, keepDir bool) error {
	existing, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if keepDir && existing.IsDir() {
		return nil
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

type dirMode struct {
	path string
	mode fs.FileMode
}

// copier carries the state of a single Copy walk.
type copier struct {
	src      string
	dst      string
	excludes []string
	stats    Stats
	dirModes []dirMode
}

func (c *copier) visit(path string, d fs.DirEntry, walkErr error) error {
	if walkErr != nil {
		return walkErr
	}

	rel, err := filepath.Rel(c.src, path)
	if err != nil {
		return err
	}

	if rel != "." && c.isExcluded(filepath.ToSlash(rel), d.IsDir()) {
		c.stats.Skipped++
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	target := filepath.Join(c.dst, rel)

	switch {
	case d.IsDir():
		return c.copyDir(path, target)
	case d.Type()&fs.ModeSymlink != 0:
		return c.copySymlink(path, target)
	case d.Type().IsRegular():
		return c.copyFile(path, target)
	default:
		// Sockets, devices and named pipes are not part of a source tree.
		c.stats.Skipped++
		return nil
	}
}

// isExcluded matches rel against the exclude patterns. Directories are
// also tested with a trailing slash so that "target/" style patterns work.
func (c *copier) isExcluded(rel string, dir bool) bool {
	for _, pattern := range c.excludes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if dir {
			if matched, _ := doublestar.Match(pattern, rel+"/"); matched {
				return true
			}
		}
	}
	return false
}

func (c *copier) copyDir(path, target string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	perm := info.Mode().Perm()

	if err := clearTarget(target, true); err != nil {
		return err
	}

	// Owner write is needed while children are copied in.
	if err := os.MkdirAll(target, perm|0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", target, err)
	}
	c.dirModes = append(c.dirModes, dirMode{path: target, mode: perm})
	c.stats.Dirs++
	return nil
}

func (c *copier) copySymlink(path, target string) error {
	link, err := os.Readlink(path)
	if err != nil {
		return err
	}

	// os.Symlink fails on an existing name.
	if err := clearTarget(target, false); err != nil {
		return err
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("create symlink %s: %w", target, err)
	}
	c.stats.Symlinks++
	return nil
}

func (c *copier) copyFile(path, target string) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := clearTarget(target, false); err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", target, cerr)
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	// OpenFile only applies the mode on creation, and umask may mask it.
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("set mode on %s: %w", target, err)
	}

	c.stats.Files++
	c.stats.Bytes += n
	return nil
}
