// Package cli: plan.go implements the "voxel-archive plan" command.
//
// The plan command shows what the root command would do, in more detail
// than --dry-run: the snapshots found in examined order, the one treated as
// latest, and the resulting source and destination. Nothing is copied.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/voxel-archive/internal/model"
)

// NewPlanCommand creates the "plan" cobra command.
func NewPlanCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the next snapshot version without copying",
		Long: `Show how the next snapshot would be created.

Examples:
  voxel-archive plan
  voxel-archive plan --sort numeric
  voxel-archive plan --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := s.resolve(cmd)
			if err != nil {
				return err
			}
			plan, err := ss.plan()
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
}

func printPlan(w io.Writer, plan *model.Plan) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(plan, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	printPlanText(w, plan)
}

// printPlanText outputs the plan as aligned key/value lines:
//
//	Directory:     /home/me/voxel
//	Sort:          lexical
//	Snapshots:     voxel-9, voxel-10
//	Latest:        voxel-9 (version 9)
//	Next version:  10
//	Copy:          voxel-main -> voxel-10
func printPlanText(w io.Writer, plan *model.Plan) {
	snapshots := "-"
	if names := plan.CandidateNames(); len(names) > 0 {
		snapshots = strings.Join(names, ", ")
	}
	latest := "-"
	if plan.Latest != nil {
		latest = fmt.Sprintf("%s (version %d)", plan.Latest.Name, plan.Latest.Version)
	}

	fmt.Fprintf(w, "%-14s %s\n", "Directory:", plan.WorkDir)
	fmt.Fprintf(w, "%-14s %s\n", "Sort:", plan.SortMode)
	fmt.Fprintf(w, "%-14s %s\n", "Snapshots:", snapshots)
	fmt.Fprintf(w, "%-14s %s\n", "Latest:", latest)
	fmt.Fprintf(w, "%-14s %s\n", "Next version:", plan.Version)
	fmt.Fprintf(w, "%-14s %s -> %s\n", "Copy:", plan.SourceName, plan.DestName)
}
