package config

import "github.com/guardscan/guardscan/internal/scan"

// DefaultMaxFileSize is the default max_file_size (1MB), applied when no
// layer sets an explicit value.
const DefaultMaxFileSize int64 = 1 * 1024 * 1024

// DefaultEntropyThreshold is the default Shannon entropy floor in
// bits/symbol for high-entropy pattern families.
const DefaultEntropyThreshold float64 = 3.0

// DefaultThreadPercentage is the default share of CPU cores made available
// to the worker pool.
const DefaultThreadPercentage = 100

// DefaultMinFilesForParallel is the file count at or above which ModeAuto
// switches from sequential to parallel execution.
const DefaultMinFilesForParallel = 20

// DefaultConfigView returns the built-in baseline every resolution starts
// from. Callers receive a fresh value each time; mutating it does not
// affect subsequent calls.
func DefaultConfigView() scan.ConfigView {
	return scan.ConfigView{
		IgnorePaths:         nil,
		IgnorePatterns:      nil,
		IgnoreComments:      nil,
		IgnoreTestCode:      true,
		TestAttributes:      nil,
		TestModules:         nil,
		CustomPatterns:      nil,
		EntropyThreshold:    DefaultEntropyThreshold,
		MaxFileSize:         DefaultMaxFileSize,
		IncludeBinary:       false,
		MaxThreads:          0,
		ThreadPercentage:    DefaultThreadPercentage,
		MinFilesForParallel: DefaultMinFilesForParallel,
		Mode:                scan.ModeAuto,
	}
}
