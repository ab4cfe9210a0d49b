package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	koanf "github.com/knadh/koanf/v2"
	"github.com/knadh/koanf/providers/confmap"

	"github.com/guardscan/guardscan/internal/scan"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// TargetDir is the directory to search for guardscan.toml. Defaults to
	// "." if empty.
	TargetDir string

	// GlobalConfigPath overrides the default
	// ~/.config/guardscan/config.toml. Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence). Keys
	// are flat ConfigView field names: "entropy_threshold", "max_threads",
	// etc, typically produced by FlagValues.ToFlagMap.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	View    scan.ConfigView
	Sources SourceMap
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/guardscan/config.toml)
//  3. Repository config (guardscan.toml in TargetDir)
//  4. Environment variables (GUARDSCAN_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently ignored. Invalid TOML syntax returns an
// error.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	k := koanf.New(".")
	sources := make(SourceMap)

	defaults := DefaultConfigView()
	if err := loadLayer(k, viewToFlatMap(defaults), sources, SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			globalPath = filepath.Join(home, ".config", "guardscan", "config.toml")
		}
	}
	if globalPath != "" {
		if err := loadFileLayer(k, globalPath, sources, SourceGlobal); err != nil {
			return nil, err
		}
	}

	targetDir := opts.TargetDir
	if targetDir == "" {
		targetDir = "."
	}
	repoPath := filepath.Join(targetDir, "guardscan.toml")
	if err := loadFileLayer(k, repoPath, sources, SourceRepo); err != nil {
		return nil, err
	}

	if envMap := buildEnvMap(); len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	view, err := flatMapToView(k)
	if err != nil {
		return nil, err
	}

	slog.Debug("config resolved",
		"entropy_threshold", view.EntropyThreshold,
		"max_file_size", view.MaxFileSize,
		"mode", view.Mode.String(),
	)

	return &ResolvedConfig{View: view, Sources: sources}, nil
}

// loadFileLayer loads a guardscan.toml-shaped file, merges its explicitly
// present fields into k, and records source attribution. A missing file is
// silently skipped.
func loadFileLayer(k *koanf.Koanf, path string, sources SourceMap, src Source) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	fc, err := LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}

	flat := fileConfigToFlatMap(fc)
	if len(flat) == 0 {
		return nil
	}

	slog.Debug("loading config layer", "path", path, "source", src.String())
	return loadLayer(k, flat, sources, src)
}

// loadLayer merges a flat map into k and marks every key as originating
// from src. This correctly attributes source even when a later layer
// supplies the same value as a prior layer.
func loadLayer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// viewToFlatMap converts a ConfigView to a flat map for koanf's confmap
// provider. Every field is included since this is used for the defaults
// layer, where every field has an authoritative value.
func viewToFlatMap(v scan.ConfigView) map[string]any {
	return map[string]any{
		"ignore_paths":           v.IgnorePaths,
		"ignore_patterns":        v.IgnorePatterns,
		"ignore_comments":        v.IgnoreComments,
		"ignore_test_code":       v.IgnoreTestCode,
		"test_attributes":        v.TestAttributes,
		"test_modules":           v.TestModules,
		"custom_patterns":        v.CustomPatterns,
		"entropy_threshold":      v.EntropyThreshold,
		"max_file_size":          v.MaxFileSize,
		"include_binary":         v.IncludeBinary,
		"max_threads":            v.MaxThreads,
		"thread_percentage":      v.ThreadPercentage,
		"min_files_for_parallel": v.MinFilesForParallel,
		"mode":                   v.Mode.String(),
	}
}

// fileConfigToFlatMap converts the subset of fc that is explicitly
// non-zero into a flat koanf map. Zero-value fields are omitted so a layer
// never shadows a lower layer with an implicit default.
func fileConfigToFlatMap(fc *FileConfig) map[string]any {
	m := make(map[string]any)

	if len(fc.IgnorePaths) > 0 {
		m["ignore_paths"] = fc.IgnorePaths
	}
	if len(fc.IgnorePatterns) > 0 {
		m["ignore_patterns"] = fc.IgnorePatterns
	}
	if len(fc.IgnoreComments) > 0 {
		m["ignore_comments"] = fc.IgnoreComments
	}
	if fc.IgnoreTestCode != nil {
		m["ignore_test_code"] = *fc.IgnoreTestCode
	}
	if len(fc.TestAttributes) > 0 {
		m["test_attributes"] = fc.TestAttributes
	}
	if len(fc.TestModules) > 0 {
		m["test_modules"] = fc.TestModules
	}
	if len(fc.CustomPatterns) > 0 {
		m["custom_patterns"] = customPatternsFromConfig(fc.CustomPatterns)
	}
	if fc.EntropyThreshold != nil {
		m["entropy_threshold"] = *fc.EntropyThreshold
	}
	if fc.MaxFileSize != "" {
		if n, err := ParseSize(fc.MaxFileSize); err == nil {
			m["max_file_size"] = n
		}
	}
	if fc.IncludeBinary != nil {
		m["include_binary"] = *fc.IncludeBinary
	}
	if fc.MaxThreads != nil {
		m["max_threads"] = *fc.MaxThreads
	}
	if fc.ThreadPercentage != nil {
		m["thread_percentage"] = *fc.ThreadPercentage
	}
	if fc.MinFilesForParallel != nil {
		m["min_files_for_parallel"] = *fc.MinFilesForParallel
	}
	if fc.Mode != "" {
		m["mode"] = fc.Mode
	}

	return m
}

func customPatternsFromConfig(in []CustomPatternConfig) []scan.CustomPattern {
	out := make([]scan.CustomPattern, len(in))
	for i, cp := range in {
		out[i] = scan.CustomPattern{
			ID:              cp.ID,
			Label:           cp.Label,
			Regex:           cp.Regex,
			Anchors:         cp.Anchors,
			RequiresEntropy: cp.RequiresEntropy,
			BaseConfidence:  cp.BaseConfidence,
		}
	}
	return out
}

// flatMapToView converts the current koanf state into a ConfigView.
func flatMapToView(k *koanf.Koanf) (scan.ConfigView, error) {
	mode, err := parseMode(k.String("mode"))
	if err != nil {
		return scan.ConfigView{}, err
	}

	var patterns []scan.CustomPattern
	if raw := k.Get("custom_patterns"); raw != nil {
		cp, ok := raw.([]scan.CustomPattern)
		if !ok {
			return scan.ConfigView{}, fmt.Errorf("custom_patterns: unexpected type %T", raw)
		}
		patterns = cp
	}

	return scan.ConfigView{
		IgnorePaths:         k.Strings("ignore_paths"),
		IgnorePatterns:      k.Strings("ignore_patterns"),
		IgnoreComments:      k.Strings("ignore_comments"),
		IgnoreTestCode:      k.Bool("ignore_test_code"),
		TestAttributes:      k.Strings("test_attributes"),
		TestModules:         k.Strings("test_modules"),
		CustomPatterns:      patterns,
		EntropyThreshold:    k.Float64("entropy_threshold"),
		MaxFileSize:         k.Int64("max_file_size"),
		IncludeBinary:       k.Bool("include_binary"),
		MaxThreads:          k.Int("max_threads"),
		ThreadPercentage:    k.Int("thread_percentage"),
		MinFilesForParallel: k.Int("min_files_for_parallel"),
		Mode:                mode,
	}, nil
}

func parseMode(s string) (scan.ExecutionMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return scan.ModeAuto, nil
	case "sequential":
		return scan.ModeSequential, nil
	case "parallel":
		return scan.ModeParallel, nil
	default:
		return scan.ModeAuto, fmt.Errorf("mode: invalid value %q (allowed: auto, sequential, parallel)", s)
	}
}
