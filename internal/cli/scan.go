package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guardscan/guardscan/internal/config"
	"github.com/guardscan/guardscan/internal/pathsource"
	"github.com/guardscan/guardscan/internal/scan"
)

var scanFlags *config.FlagValues

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory for secrets",
	Long: `scan walks the target directory (default: the current directory),
applies the configured ignore rules and pattern catalog, and prints a
report of every finding.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateFlags(scanFlags); err != nil {
			return err
		}
		setupLoggingFromFlags(scanFlags)
		return nil
	},
	RunE: runScan,
}

func init() {
	scanFlags = config.BindFlags(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	resolved, err := config.Resolve(config.ResolveOptions{
		TargetDir: scanFlags.Dir,
		CLIFlags:  scanFlags.ToFlagMap(cmd),
	})
	if err != nil {
		return scan.NewConfigInvalidError("resolving configuration", err)
	}

	if errs := config.Validate(resolved.View); len(errs) > 0 {
		return scan.NewConfigInvalidError("invalid configuration", errs[0])
	}

	scope, paths, err := resolveScope(scanFlags)
	if err != nil {
		return err
	}

	job := scan.NewScanJob(scanFlags.Dir, scope, resolved.View)
	job.Paths = paths

	report, err := scan.Scan(context.Background(), job)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, report, scanFlags.JSON); err != nil {
		return err
	}

	if len(report.Findings) > 0 {
		return &scan.Error{
			Kind:    "FindingsPresent",
			Code:    scan.ExitPartial,
			Message: fmt.Sprintf("%d finding(s) detected", len(report.Findings)),
		}
	}
	return nil
}

// resolveScope maps the --staged/--unstaged flags onto a scan.ScanScope,
// resolving the explicit path list via git plumbing when needed.
func resolveScope(fv *config.FlagValues) (scan.ScanScope, []string, error) {
	switch {
	case fv.Staged:
		if !pathsource.IsRepo(fv.Dir) {
			return 0, nil, fmt.Errorf("--staged requires %s to be a git repository", fv.Dir)
		}
		paths, err := pathsource.NewGitSource(fv.Dir).ListStaged()
		if err != nil {
			return 0, nil, fmt.Errorf("listing staged files: %w", err)
		}
		return scan.ScopePaths, paths, nil
	case fv.Unstaged:
		if !pathsource.IsRepo(fv.Dir) {
			return 0, nil, fmt.Errorf("--unstaged requires %s to be a git repository", fv.Dir)
		}
		paths, err := pathsource.NewGitSource(fv.Dir).ListUnstaged()
		if err != nil {
			return 0, nil, fmt.Errorf("listing unstaged files: %w", err)
		}
		return scan.ScopePaths, paths, nil
	default:
		return scan.ScopeAll, nil, nil
	}
}

func writeReport(cmd *cobra.Command, report *scan.ScanReport, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "scanned %d file(s) in %s, %d finding(s)\n",
		report.Stats.FilesScanned, report.Duration, len(report.Findings))
	for _, f := range report.Findings {
		fmt.Fprintf(out, "  %s:%d  %s  %s  (confidence %.2f)\n", f.Path, f.Line, f.PatternID, f.Excerpt, f.Confidence)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "  warning: %s %s %s\n", w.Kind, w.Path, w.Message)
	}
	return nil
}
