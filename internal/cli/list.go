// Package cli: list.go implements the "voxel-archive list" command.
//
// The list command displays the snapshot directories found in the working
// directory, in the order the archiver examines them: the first row is the
// snapshot the next version is derived from.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/voxel-archive/internal/model"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List existing snapshots",
		Long: `List the snapshot directories in the working directory.

Rows are shown in examined order: the first one is treated as the latest
snapshot. With the default lexical ordering, voxel-9 is listed before
voxel-10.

Examples:
  voxel-archive list
  voxel-archive list --sort numeric
  voxel-archive list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, s)
		},
	}
}

func runList(cmd *cobra.Command, s *settings) error {
	ss, err := s.resolve(cmd)
	if err != nil {
		return err
	}

	snapshots, err := ss.planner.List(os.DirFS(ss.workDir))
	if err != nil {
		return model.WrapCLIError(model.ExitScanFailed,
			fmt.Sprintf("cannot list working directory %s", ss.workDir), err)
	}
	VerboseLog("Found %d snapshot(s)", len(snapshots))

	printListResult(cmd.OutOrStdout(), snapshots)
	return nil
}

// printListResult outputs the snapshots in text or JSON format,
// depending on the global --json flag.
func printListResult(w io.Writer, snapshots []model.Candidate) {
	if IsJSONOutput() {
		printListResultJSON(w, snapshots)
	} else {
		printListResultText(w, snapshots)
	}
}

func printListResultJSON(w io.Writer, snapshots []model.Candidate) {
	type resultJSON struct {
		Snapshots []model.Candidate `json:"snapshots"`
	}

	// An empty slice instead of nil so JSON shows [] rather than null.
	result := resultJSON{Snapshots: make([]model.Candidate, 0, len(snapshots))}
	result.Snapshots = append(result.Snapshots, snapshots...)

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(w, string(data))
}

// printListResultText outputs the snapshots as a table:
//
//	NAME                 VERSION
//	voxel-06             6
//	voxel-05             5
func printListResultText(w io.Writer, snapshots []model.Candidate) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots found.")
		return
	}

	fmt.Fprintf(w, "%-20s %s\n", "NAME", "VERSION")
	for _, c := range snapshots {
		fmt.Fprintf(w, "%-20s %d\n", c.Name, c.Version)
	}
}
