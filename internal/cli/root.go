// Package cli implements the Cobra command hierarchy for the guardscan CLI
// tool. The root command defined here is the entry point for all
// subcommands and handles cross-cutting concerns like logging
// initialization and error handling.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/guardscan/guardscan/internal/config"
	"github.com/guardscan/guardscan/internal/scan"
)

var rootCmd = &cobra.Command{
	Use:   "guardscan",
	Short: "Scan a repository for leaked secrets.",
	Long: `guardscan walks a directory tree, applies a multi-stage pattern
matcher guarded by an ignore engine, and reports any credentials, private
keys, or high-entropy tokens it finds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// Execute runs the root command and returns an appropriate process exit
// code. If the error is a *scan.Error, its Code is used.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return extractExitCode(err)
	}
	return int(scan.ExitSuccess)
}

// extractExitCode determines the process exit code from an error. If the
// error is a *scan.Error, its Code field is used; otherwise ExitError (1)
// is returned for any non-nil error.
func extractExitCode(err error) int {
	if err == nil {
		return int(scan.ExitSuccess)
	}
	var scanErr *scan.Error
	if errors.As(err, &scanErr) {
		return int(scanErr.Code)
	}
	return int(scan.ExitError)
}

// RootCmd returns the root cobra.Command for use in testing and subcommand
// registration.
func RootCmd() *cobra.Command {
	return rootCmd
}

func setupLoggingFromFlags(fv *config.FlagValues) {
	level := config.ResolveLogLevel(fv.Verbose, fv.Quiet)
	format := config.ResolveLogFormat()
	config.SetupLogging(level, format)
	slog.Debug("logging initialized", "level", level, "format", format)
}
