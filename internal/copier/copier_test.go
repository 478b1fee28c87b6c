package copier

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/voxel-archive/internal/model"
)

// writeTree creates files (relative path → content) under root, creating
// parent directories as needed.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// readTree returns every regular file under root keyed by slash-separated
// relative path, plus the set of directories.
func readTree(t *testing.T, root string) (map[string]string, []string) {
	t.Helper()
	files := map[string]string{}
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.IsDir():
			dirs = append(dirs, rel)
		case d.Type().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files[rel] = string(data)
		}
		return nil
	})
	require.NoError(t, err)
	return files, dirs
}

func sampleSource(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "voxel-main")
	writeTree(t, src, map[string]string{
		"Cargo.toml":                   "[package]\nname = \"voxel\"\n",
		"src/main.rs":                  "fn main() {}\n",
		"src/world.rs":                 "pub struct World;\n",
		"src/occupations/farmer.rs":    "pub struct Farmer;\n",
		"src/occupations/mindless.rs":  "",
		"assets/shaders/deep/voxel.fs": "void main() {}\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))
	return src
}

// TestCopy_Fidelity verifies the destination is an identical recursive copy
// and that the source is left untouched.
func TestCopy_Fidelity(t *testing.T) {
	src := sampleSource(t)
	dst := filepath.Join(filepath.Dir(src), "voxel-00")

	beforeFiles, beforeDirs := readTree(t, src)

	stats, err := Copy(src, dst, Options{})
	require.NoError(t, err)

	gotFiles, gotDirs := readTree(t, dst)
	assert.Equal(t, beforeFiles, gotFiles)
	assert.ElementsMatch(t, beforeDirs, gotDirs)

	afterFiles, afterDirs := readTree(t, src)
	assert.Equal(t, beforeFiles, afterFiles, "source must not be modified")
	assert.Equal(t, beforeDirs, afterDirs)

	assert.Equal(t, 6, stats.Files)
	assert.Equal(t, len(beforeDirs), stats.Dirs)
	assert.Equal(t, int64(len("[package]\nname = \"voxel\"\n")+len("fn main() {}\n")+
		len("pub struct World;\n")+len("pub struct Farmer;\n")+len("void main() {}\n")), stats.Bytes)
}

// TestCopy_MergesIntoExistingDestination verifies that an existing
// destination keeps unrelated files and has same-named files overwritten.
func TestCopy_MergesIntoExistingDestination(t *testing.T) {
	src := sampleSource(t)
	dst := filepath.Join(filepath.Dir(src), "voxel-01")
	writeTree(t, dst, map[string]string{
		"src/main.rs": "stale\n",
		"NOTES.md":    "keep me\n",
	})

	_, err := Copy(src, dst, Options{})
	require.NoError(t, err)

	files, _ := readTree(t, dst)
	assert.Equal(t, "fn main() {}\n", files["src/main.rs"])
	assert.Equal(t, "keep me\n", files["NOTES.md"])
	// Merging does not nest the source inside the destination.
	assert.NotContains(t, files, "voxel-main/Cargo.toml")
}

// TestCopy_Excludes verifies doublestar patterns skip files and whole
// directories.
func TestCopy_Excludes(t *testing.T) {
	src := sampleSource(t)
	writeTree(t, src, map[string]string{
		"target/debug/voxel":          "binary",
		"target/release/.fingerprint": "x",
		"src/debug.log":               "log",
	})
	dst := filepath.Join(filepath.Dir(src), "voxel-02")

	stats, err := Copy(src, dst, Options{Excludes: []string{"target/", "**/*.log"}})
	require.NoError(t, err)

	files, dirs := readTree(t, dst)
	assert.NotContains(t, dirs, "target")
	assert.NotContains(t, files, "src/debug.log")
	assert.Contains(t, files, "src/main.rs")
	assert.Equal(t, 2, stats.Skipped)
}

// TestCopy_PreservesModeAndSymlinks verifies permission bits and symlinks
// survive the copy.
func TestCopy_PreservesModeAndSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits and symlinks are not portable to windows")
	}

	src := sampleSource(t)
	script := filepath.Join(src, "run.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.Symlink("src/main.rs", filepath.Join(src, "entry.rs")))

	dst := filepath.Join(filepath.Dir(src), "voxel-03")
	stats, err := Copy(src, dst, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Symlinks)

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o755), info.Mode().Perm())

	link, err := os.Readlink(filepath.Join(dst, "entry.rs"))
	require.NoError(t, err)
	assert.Equal(t, "src/main.rs", link)
}

// TestCopy_Errors verifies the exit codes attached to copy failures.
func TestCopy_Errors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "voxel-main")
	require.NoError(t, os.WriteFile(file, []byte("not a dir"), 0o644))

	tests := []struct {
		name string
		src  string
		opts Options
		code model.ExitCode
	}{
		{"missing source", filepath.Join(root, "nope"), Options{}, model.ExitSourceNotFound},
		{"source is a file", file, Options{}, model.ExitSourceNotFound},
		{"bad exclude pattern", file, Options{Excludes: []string{"src/[a-"}}, model.ExitConfigInvalid},
		{"work dir as source", root, Options{}, model.ExitConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Copy(tt.src, filepath.Join(root, "voxel-00"), tt.opts)
			require.Error(t, err)

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, tt.code, cliErr.Code)

			_, statErr := os.Stat(filepath.Join(root, "voxel-00"))
			assert.True(t, os.IsNotExist(statErr), "nothing should be written on early failure")
		})
	}
}

// TestCopy_ReplacesLinksInDestination verifies that symlinks and hard links
// left in an existing destination are replaced, not written through. Both
// point back into the source here, which must come out unchanged.
func TestCopy_ReplacesLinksInDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks are not portable to windows")
	}

	src := sampleSource(t)
	writeTree(t, src, map[string]string{"world.ron": "precious\n"})
	before, _ := readTree(t, src)

	dst := filepath.Join(filepath.Dir(src), "voxel-10")
	require.NoError(t, os.MkdirAll(dst, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(src, "world.ron"), filepath.Join(dst, "world.ron")))
	require.NoError(t, os.Symlink(filepath.Join(src, "src"), filepath.Join(dst, "src")))
	require.NoError(t, os.Link(filepath.Join(src, "Cargo.toml"), filepath.Join(dst, "Cargo.toml")))

	_, err := Copy(src, dst, Options{})
	require.NoError(t, err)

	after, _ := readTree(t, src)
	assert.Equal(t, before, after, "source must not be modified")

	info, err := os.Lstat(filepath.Join(dst, "world.ron"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	info, err = os.Lstat(filepath.Join(dst, "src"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "symlinked directory should become a real directory")

	srcInfo, err := os.Stat(filepath.Join(src, "Cargo.toml"))
	require.NoError(t, err)
	dstInfo, err := os.Stat(filepath.Join(dst, "Cargo.toml"))
	require.NoError(t, err)
	assert.False(t, os.SameFile(srcInfo, dstInfo), "hard link should be replaced by a copy")

	got, _ := readTree(t, dst)
	assert.Equal(t, before, got)
}

// TestCopy_RefusesDestinationInsideSource verifies a destination equal to
// the source, below it, or linked to it is rejected before anything is
// written.
func TestCopy_RefusesDestinationInsideSource(t *testing.T) {
	src := sampleSource(t)
	parent := filepath.Dir(src)

	linked := filepath.Join(parent, "voxel-07")
	symlinks := runtime.GOOS != "windows" && os.Symlink(src, linked) == nil

	tests := []struct {
		name string
		src  string
		dst  string
	}{
		{"same directory", src, src},
		{"child of source", src, filepath.Join(src, "voxel-00")},
		{"parent copied into child", parent, filepath.Join(parent, "voxel-00")},
		{"relative source", mustRel(t, src), filepath.Join(src, "voxel-01")},
	}
	if symlinks {
		tests = append(tests, struct {
			name string
			src  string
			dst  string
		}{"destination links to source", src, linked})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Copy(tt.src, tt.dst, Options{})
			require.Error(t, err)

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitConfigInvalid, cliErr.Code)
		})
	}

	_, err := os.Stat(filepath.Join(src, "voxel-00"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(parent, "voxel-00"))
	assert.True(t, os.IsNotExist(err))
}

// mustRel returns path relative to the current directory.
func mustRel(t *testing.T, path string) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, path)
	require.NoError(t, err)
	return rel
}

// TestValidateExcludes checks pattern validation on its own.
func TestValidateExcludes(t *testing.T) {
	assert.NoError(t, ValidateExcludes(nil))
	assert.NoError(t, ValidateExcludes([]string{"target/**", "**/*.log", "{a,b}/*"}))
	assert.Error(t, ValidateExcludes([]string{"ok/**", "[unclosed"}))
}
