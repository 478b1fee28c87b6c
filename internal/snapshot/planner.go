package snapshot

import (
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shinji-kodama/voxel-archive/internal/model"
)

const (
	// DefaultPrefix is the name prefix shared by the source and every snapshot.
	DefaultPrefix = "voxel-"

	// DefaultSource is the working directory that gets archived.
	DefaultSource = "voxel-main"

	// DefaultPadWidth is the minimum number of digits in a version string.
	DefaultPadWidth = 2
)

// Options controls how a Planner recognizes and orders snapshots.
type Options struct {
	// Prefix precedes the version digits in snapshot names ("voxel-").
	Prefix string

	// Source is the directory name, relative to the work dir, to archive.
	Source string

	// PadWidth is the minimum width of the version string. Shorter
	// versions are left-padded with '0'.
	PadWidth int

	// SortMode selects which candidate is treated as the latest snapshot.
	SortMode model.SortMode
}

// DefaultOptions returns the options that reproduce the historical
// behavior: voxel-main archived as voxel-NN, lexical ordering.
func DefaultOptions() Options {
	return Options{
		Prefix:   DefaultPrefix,
		Source:   DefaultSource,
		PadWidth: DefaultPadWidth,
		SortMode: model.SortLexical,
	}
}

// Matcher recognizes snapshot directory names.
//
// The pattern is anchored at the end only: "<prefix><digits>" must close
// the name, but anything may come before the prefix. "voxel-main" and
// "voxel-abc" never match; "voxel-5", "voxel-05" and "old-voxel-7" do.
type Matcher struct {
	prefix string
	re     *regexp.Regexp
}

// NewMatcher compiles the snapshot pattern for the given prefix. The prefix
// is matched literally, so regexp metacharacters in it are harmless.
func NewMatcher(prefix string) *Matcher {
	return &Matcher{
		prefix: prefix,
		re:     regexp.MustCompile(regexp.QuoteMeta(prefix) + `([0-9]+)$`),
	}
}

// Match reports whether name is a snapshot name and returns its version.
// A digit group whose successor does not fit in an int is treated as not
// matching.
func (m *Matcher) Match(name string) (int, bool) {
	sub := m.re.FindStringSubmatch(name)
	if sub == nil {
		return 0, false
	}
	v, err := strconv.Atoi(sub[1])
	if err != nil || v == math.MaxInt {
		return 0, false
	}
	return v, true
}

// DestName returns the snapshot directory name for a version string.
func (m *Matcher) DestName(version string) string {
	return m.prefix + version
}

// FormatVersion renders v in decimal, left-padded with '0' to at least
// width characters. FormatVersion(3, 2) is "03", FormatVersion(123, 2)
// is "123".
func FormatVersion(v, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%0*d", width, v)
}

// Order returns a copy of cands arranged so that the first element is the
// one treated as latest.
//
// In SortLexical mode names are sorted as strings and reversed, so
// "voxel-9" comes before "voxel-10". Existing archives depend on that
// order, which is why it stays the default. SortNumeric orders by parsed
// version, highest first, breaking ties by reverse name order.
func Order(cands []model.Candidate, mode model.SortMode) []model.Candidate {
	ordered := make([]model.Candidate, len(cands))
	copy(ordered, cands)

	switch mode {
	case model.SortNumeric:
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].Version != ordered[j].Version {
				return ordered[i].Version > ordered[j].Version
			}
			return ordered[i].Name > ordered[j].Name
		})
	default:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Name > ordered[j].Name
		})
	}
	return ordered
}

// NextVersion derives the new version string from ordered candidates:
// the first candidate's version plus one, or zero when there is none.
func NextVersion(ordered []model.Candidate, width int) string {
	if len(ordered) == 0 {
		return FormatVersion(0, width)
	}
	return FormatVersion(ordered[0].Version+1, width)
}

// Planner scans a working directory and computes archive plans.
type Planner struct {
	opts    Options
	matcher *Matcher
}

// NewPlanner validates opts and returns a Planner. Zero-valued fields are
// filled from DefaultOptions.
func NewPlanner(opts Options) (*Planner, error) {
	def := DefaultOptions()
	if opts.Prefix == "" {
		opts.Prefix = def.Prefix
	}
	if opts.Source == "" {
		opts.Source = def.Source
	}
	if opts.PadWidth == 0 {
		opts.PadWidth = def.PadWidth
	}
	if opts.SortMode == "" {
		opts.SortMode = def.SortMode
	}

	if opts.PadWidth < 1 {
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("pad width must be at least 1, got %d", opts.PadWidth))
	}
	if !opts.SortMode.IsValid() {
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("invalid sort mode %q: valid values are lexical, numeric", opts.SortMode))
	}
	if strings.ContainsAny(opts.Prefix, `/\`) || strings.ContainsAny(opts.Source, `/\`) {
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			"source and prefix must be plain directory names without path separators")
	}
	if opts.Source == "." || opts.Source == ".." {
		return nil, model.NewCLIError(model.ExitConfigInvalid,
			fmt.Sprintf("source %q would contain the snapshot written from it", opts.Source))
	}

	return &Planner{opts: opts, matcher: NewMatcher(opts.Prefix)}, nil
}

// Options returns the effective options after defaults were applied.
func (p *Planner) Options() Options {
	return p.opts
}

// Matcher returns the snapshot name matcher used by this planner.
func (p *Planner) Matcher() *Matcher {
	return p.matcher
}

// Scan lists the top level of fsys and returns every snapshot directory in
// directory-listing order.
//
// Hidden entries (leading '.') are skipped. Symlinks count as directories
// when their target is a directory.
func (p *Planner) Scan(fsys fs.FS) ([]model.Candidate, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var cands []model.Candidate
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !isDir(fsys, e) {
			continue
		}
		v, ok := p.matcher.Match(name)
		if !ok {
			continue
		}
		cands = append(cands, model.Candidate{Name: name, Version: v})
	}
	return cands, nil
}

// List returns the snapshot directories of fsys in examined order, i.e.
// the first element is the one a plan would treat as latest.
func (p *Planner) List(fsys fs.FS) ([]model.Candidate, error) {
	cands, err := p.Scan(fsys)
	if err != nil {
		return nil, err
	}
	return Order(cands, p.opts.SortMode), nil
}

// Plan computes the archive plan for workDir, reading its listing from fsys.
// fsys must be rooted at workDir; workDir is only used to build the
// absolute source and destination paths.
func (p *Planner) Plan(fsys fs.FS, workDir string) (*model.Plan, error) {
	ordered, err := p.List(fsys)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitScanFailed,
			fmt.Sprintf("cannot list working directory %s", workDir), err)
	}

	version := NextVersion(ordered, p.opts.PadWidth)
	dest := p.matcher.DestName(version)

	plan := &model.Plan{
		WorkDir:    workDir,
		Candidates: ordered,
		Version:    version,
		SortMode:   p.opts.SortMode,
		SourceName: p.opts.Source,
		DestName:   dest,
		SourcePath: filepath.Join(workDir, p.opts.Source),
		DestPath:   filepath.Join(workDir, dest),
	}
	if len(ordered) > 0 {
		latest := ordered[0]
		plan.Latest = &latest
	}
	return plan, nil
}

// isDir applies the host directory test to a listing entry, following
// symlinks the way stat(2) does.
func isDir(fsys fs.FS, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := fs.Stat(fsys, e.Name())
	if err != nil {
		// Dangling symlink.
		return false
	}
	return info.IsDir()
}
