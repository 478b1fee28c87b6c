// Package cli: archive.go implements the root command's action: compute the
// next snapshot version and copy the source directory to it.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/voxel-archive/internal/copier"
	"github.com/shinji-kodama/voxel-archive/internal/model"
)

// archiveResultJSON is the --json output of the root command.
type archiveResultJSON struct {
	*model.Plan
	DryRun bool          `json:"dryRun"`
	Copied *copier.Stats `json:"copied,omitempty"`
}

// runArchive is the main logic function for the root command.
func runArchive(cmd *cobra.Command, s *settings, dryRun bool) error {
	ss, err := s.resolve(cmd)
	if err != nil {
		return err
	}

	plan, err := ss.plan()
	if err != nil {
		return err
	}
	VerboseLog("Found %d snapshot(s)", len(plan.Candidates))

	out := cmd.OutOrStdout()
	if !IsJSONOutput() {
		printArchiveHeader(out, plan, ss.cfg.Banner)
	}

	result := archiveResultJSON{Plan: plan, DryRun: dryRun}
	if dryRun {
		VerboseLog("Dry run: %s not copied", plan.SourceName)
	} else {
		stats, err := copier.Copy(plan.SourcePath, plan.DestPath, ss.cfg.CopyOptions())
		if err != nil {
			return err
		}
		VerboseLog("Copied %d file(s), %d dir(s), %d symlink(s), %d byte(s); skipped %d",
			stats.Files, stats.Dirs, stats.Symlinks, stats.Bytes, stats.Skipped)
		result.Copied = &stats
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(out, string(data))
	}
	return nil
}

// printArchiveHeader writes the three lines printed before every copy:
//
//	[ 'voxel-03', 'voxel-02' ]
//	-R voxel-main voxel-04
//	main.rs archiving as version 04
//
// The candidate list is always printed on a single line.
func printArchiveHeader(w io.Writer, plan *model.Plan, banner string) {
	fmt.Fprintln(w, FormatNameList(plan.CandidateNames()))
	fmt.Fprintln(w, "-R", plan.SourceName, plan.DestName)
	fmt.Fprintf(w, "%s archiving as version %s\n", banner, plan.Version)
}

// FormatNameList renders names as a single-line quoted array, e.g.
// [ 'voxel-03', 'voxel-02' ], or [] when empty.
func FormatNameList(names []string) string {
	if len(names) == 0 {
		return "[]"
	}
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, quoteName(n))
	}
	return "[ " + strings.Join(quoted, ", ") + " ]"
}

// quoteName prefers single quotes and switches to double quotes or
// backticks when the name contains the preferred quote.
func quoteName(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	case !strings.Contains(s, "`"):
		return "`" + s + "`"
	default:
		return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
	}
}
