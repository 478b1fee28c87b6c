package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/voxel-archive/internal/config"
	"github.com/shinji-kodama/voxel-archive/internal/model"
	"github.com/shinji-kodama/voxel-archive/internal/snapshot"
)

// session is everything a command needs after flags and the settings file
// have been merged.
type session struct {
	workDir string
	cfg     *config.Config
	planner *snapshot.Planner
}

// resolve determines the working directory, loads its settings file,
// applies flag overrides and builds the planner.
func (s *settings) resolve(cmd *cobra.Command) (*session, error) {
	workDir := s.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitScanFailed, "cannot determine current directory", err)
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitScanFailed,
			fmt.Sprintf("cannot resolve directory %s", s.workDir), err)
	}

	cfg, used, err := config.Load(workDir, s.configPath)
	if err != nil {
		return nil, err
	}
	if used != "" {
		VerboseLog("Loaded settings from %s", used)
	}

	// Only flags the user actually passed override the file.
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = s.source
	}
	if flags.Changed("prefix") {
		cfg.Prefix = s.prefix
	}
	if flags.Changed("sort") {
		cfg.Sort = s.sort
	}
	if flags.Changed("pad-width") {
		cfg.PadWidth = s.padWidth
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, s.excludes...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	planner, err := snapshot.NewPlanner(cfg.PlannerOptions())
	if err != nil {
		return nil, err
	}

	VerboseLog("Working directory: %s", workDir)
	VerboseLog("Source %q, prefix %q, sort %s", cfg.Source, cfg.Prefix, cfg.Sort)

	return &session{workDir: workDir, cfg: cfg, planner: planner}, nil
}

// plan scans the working directory and computes the archive plan.
func (ss *session) plan() (*model.Plan, error) {
	return ss.planner.Plan(os.DirFS(ss.workDir), ss.workDir)
}
