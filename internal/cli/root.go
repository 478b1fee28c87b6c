// Package cli implements the cobra-based CLI commands for voxel-archive.
//
// The root command performs the archive itself, so running the binary with
// no arguments behaves exactly like the old archiving script. The plan and
// list subcommands are read-only views over the same planner.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/voxel-archive/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput switches command output (and errors) to JSON.
	jsonOutput bool

	// verbose enables [verbose] trace lines on stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// settings holds the flags that select and override the archive
// configuration. They are persistent so plan and list see the same
// snapshots the root command would.
type settings struct {
	workDir    string
	configPath string
	source     string
	prefix     string
	sort       string
	padWidth   int
	excludes   []string
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	s := &settings{}
	var dryRun bool

	rootCmd := &cobra.Command{
		Use:   "voxel-archive",
		Short: "Archive the voxel working directory as the next numbered snapshot",
		Long: `voxel-archive copies the working directory (voxel-main by default) to a new
snapshot directory named voxel-NN, where NN is one more than the latest
existing snapshot, zero-padded to two digits.

Snapshots are detected among the subdirectories of the current directory.
By default the latest snapshot is chosen by reverse lexical order of the
names, which matches earlier archives; use --sort numeric to pick the
numerically highest version instead.

Settings can also be stored in .voxel-archive.yaml or .voxel-archive.jsonc
in the working directory. Flags override the file.

Examples:
  voxel-archive
  voxel-archive --dry-run
  voxel-archive --exclude 'target/**'
  voxel-archive -C ~/src/voxel --sort numeric`,

		Args: cobra.NoArgs,

		// We handle error output ourselves (text or JSON based on --json).
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, s, dryRun)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.StringVarP(&s.workDir, "dir", "C", "", "Directory containing the source and snapshots (default: current directory)")
	pf.StringVar(&s.configPath, "config", "", "Settings file (default: .voxel-archive.yaml or .voxel-archive.jsonc in --dir)")
	pf.StringVar(&s.source, "source", "", "Directory to archive (default: voxel-main)")
	pf.StringVar(&s.prefix, "prefix", "", "Snapshot name prefix (default: voxel-)")
	pf.StringVar(&s.sort, "sort", "", "How the latest snapshot is chosen: lexical, numeric (default: lexical)")
	pf.IntVar(&s.padWidth, "pad-width", 0, "Minimum number of digits in the version (default: 2)")
	pf.StringArrayVar(&s.excludes, "exclude", nil, "Pattern (doublestar syntax, relative to the source) to leave out; repeatable")

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print what would be archived without copying")

	rootCmd.AddCommand(NewPlanCommand(s))
	rootCmd.AddCommand(NewListCommand(s))

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
		} else {
			printError(err.Error(), nil)
		}
		os.Exit(int(ExitCodeFor(err)))
	}
}

// ExitCodeFor maps an error returned by a command to the process exit code.
// CLIErrors carry their own code; anything else is a general error.
func ExitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitGeneralError
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// stdout is reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
