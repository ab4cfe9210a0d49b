package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// FlagValues collects all parsed scan-command flag values from the CLI.
// This struct is populated by BindFlags and passed to Resolve as the
// highest-precedence layer.
type FlagValues struct {
	Dir          string
	Staged       bool
	Unstaged     bool
	IgnorePaths  []string
	MaxFileSize  string
	Entropy      float64
	Threads      int
	ThreadPct    int
	IncludeBin   bool
	Mode         string
	JSON         bool
	Verbose      bool
	Quiet        bool
}

// BindFlags registers the scan command's flags on cmd and returns a
// FlagValues pointer populated once Cobra parses arguments.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	pf := cmd.Flags()
	pf.StringVarP(&fv.Dir, "dir", "d", ".", "root directory to scan")
	pf.BoolVar(&fv.Staged, "staged", false, "scan only git-staged files")
	pf.BoolVar(&fv.Unstaged, "unstaged", false, "scan only git-unstaged files")
	pf.StringArrayVar(&fv.IgnorePaths, "ignore", nil, "ignore glob pattern (repeatable)")
	pf.StringVar(&fv.MaxFileSize, "max-file-size", "", "skip files larger than threshold (e.g. 500KB, 2MB)")
	pf.Float64Var(&fv.Entropy, "entropy-threshold", 0, "Shannon entropy floor in bits/symbol")
	pf.IntVar(&fv.Threads, "max-threads", 0, "hard cap on worker goroutines")
	pf.IntVar(&fv.ThreadPct, "thread-percentage", 0, "percentage of CPU cores made available to workers")
	pf.BoolVar(&fv.IncludeBin, "include-binary", false, "scan files detected as binary")
	pf.StringVar(&fv.Mode, "mode", "", "execution mode: auto, sequential, parallel")
	pf.BoolVar(&fv.JSON, "json", false, "emit the scan report as JSON")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "log errors only (the scan report is still printed)")

	return fv
}

// ValidateFlags checks the parsed flag values for correctness and mutual
// exclusion. Call this from PersistentPreRunE after Cobra has parsed flags.
func ValidateFlags(fv *FlagValues) error {
	if fv.Verbose && fv.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	if fv.Staged && fv.Unstaged {
		return fmt.Errorf("--staged and --unstaged are mutually exclusive")
	}

	info, err := os.Stat(fv.Dir)
	if err != nil {
		return fmt.Errorf("--dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--dir: %s is not a directory", fv.Dir)
	}

	if fv.Mode != "" {
		switch strings.ToLower(fv.Mode) {
		case "auto", "sequential", "parallel":
		default:
			return fmt.Errorf("--mode: invalid value %q (allowed: auto, sequential, parallel)", fv.Mode)
		}
	}

	if fv.MaxFileSize != "" {
		if _, err := ParseSize(fv.MaxFileSize); err != nil {
			return fmt.Errorf("--max-file-size: %w", err)
		}
	}

	return nil
}

// ToFlagMap converts the subset of fv that the user actually set (per
// cmd.Flags().Changed) into a flat map suitable for the CLI flag layer of
// Resolve. Unset flags are omitted so they don't shadow lower layers.
func (fv *FlagValues) ToFlagMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	changed := cmd.Flags().Changed

	if changed("ignore") {
		m["ignore_paths"] = fv.IgnorePaths
	}
	if changed("max-file-size") {
		if n, err := ParseSize(fv.MaxFileSize); err == nil {
			m["max_file_size"] = n
		}
	}
	if changed("entropy-threshold") {
		m["entropy_threshold"] = fv.Entropy
	}
	if changed("max-threads") {
		m["max_threads"] = fv.Threads
	}
	if changed("thread-percentage") {
		m["thread_percentage"] = fv.ThreadPct
	}
	if changed("include-binary") {
		m["include_binary"] = fv.IncludeBin
	}
	if changed("mode") {
		m["mode"] = fv.Mode
	}

	return m
}

// ParseSize parses a human-readable size string into bytes. It supports KB,
// MB, and GB suffixes (case-insensitive). Plain numbers without a suffix are
// treated as bytes. KB = 1024, MB = 1048576, GB = 1073741824.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)

	var suffix string
	var multiplier int64

	switch {
	case strings.HasSuffix(upper, "GB"):
		suffix = "GB"
		multiplier = 1024 * 1024 * 1024
	case strings.HasSuffix(upper, "MB"):
		suffix = "MB"
		multiplier = 1024 * 1024
	case strings.HasSuffix(upper, "KB"):
		suffix = "KB"
		multiplier = 1024
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return n, nil
	}

	numStr := strings.TrimSpace(s[:len(s)-len(suffix)])
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(numStr, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if f < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return int64(f * float64(multiplier)), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("size must be non-negative: %q", s)
	}
	return n * multiplier, nil
}
