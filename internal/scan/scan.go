package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guardscan/guardscan/internal/ignore"
	"github.com/guardscan/guardscan/internal/secret"
	"github.com/guardscan/guardscan/internal/walk"
)

// Scan runs a synchronous scan of job and returns the finished report.
func Scan(ctx context.Context, job ScanJob) (*ScanReport, error) {
	return ScanWithProgress(ctx, job, nil)
}

// ScanWithProgress runs a scan, invoking reporter at the cadence described
// in §4.3 if non-nil.
func ScanWithProgress(ctx context.Context, job ScanJob, reporter ProgressFunc) (*ScanReport, error) {
	logger := slog.Default().With("component", "scan", "job_id", job.ID.String())
	start := time.Now()

	if err := validateConfig(job.Config); err != nil {
		return nil, NewConfigInvalidError("invalid scan configuration", err)
	}

	digest := ConfigDigest(job.Config)
	matcher, err := secret.NewMatcherCached(digest, secret.Options{CustomPatterns: toSecretCustomPatterns(job.Config.CustomPatterns)})
	if err != nil {
		return nil, NewConfigInvalidError("invalid pattern configuration", err)
	}

	ignoreEng := ignore.NewEngine(ignore.Options{
		IgnorePaths:    job.Config.IgnorePaths,
		IgnorePatterns: job.Config.IgnorePatterns,
		IgnoreComments: job.Config.IgnoreComments,
		IgnoreTestCode: job.Config.IgnoreTestCode,
		TestAttributes: job.Config.TestAttributes,
		TestModules:    job.Config.TestModules,
	})

	scanner := newFileScanner(job.Config, ignoreEng, matcher, digest)

	walker := walk.NewWalker()
	candidateCh, err := walker.Walk(ctx, walk.Options{Root: job.Root, PathIgnorer: pathIgnorerAdapter{ignoreEng}})
	if err != nil {
		return nil, NewRootUnreadableError("scan root unreadable", err)
	}

	candidates, err := selectCandidates(job, candidateCh)
	if err != nil {
		return nil, err
	}

	logger.Info("scan starting", "root", job.Root, "candidates", len(candidates))

	findings, warnings, stats := runScan(ctx, job.Config, scanner, candidates, reporter)

	duration := time.Since(start)
	workers := 1
	if mode, w := chooseMode(job.Config, len(candidates)); mode == ModeParallel {
		workers = w
	}

	report := &ScanReport{
		Findings:     findings,
		Warnings:     warnings,
		Cancelled:    stats.cancelled.Load(),
		ConfigDigest: digest,
		Duration:     duration,
		Stats: ReportStats{
			FilesEnumerated: stats.filesEnumerated.Load(),
			FilesScanned:    stats.filesScanned.Load(),
			BytesRead:       stats.bytesRead.Load(),
			Findings:        uint64(len(findings)),
			WallMS:          uint64(duration.Milliseconds()),
			Workers:         uint64(workers),
		},
	}

	logger.Info("scan complete", "findings", len(findings), "wall_ms", report.Stats.WallMS, "cancelled", report.Cancelled)
	return report, nil
}

// selectCandidates drains the walker's channel, applying ScanScope
// filtering (staged/unstaged/explicit paths) against the full candidate
// set. The walker itself has no notion of scope; scan owns that join.
func selectCandidates(job ScanJob, ch <-chan walk.CandidateFile) ([]walk.CandidateFile, error) {
	var allow map[string]bool
	if job.Scope == ScopePaths {
		allow = make(map[string]bool, len(job.Paths))
		for _, p := range job.Paths {
			allow[p] = true
		}
	}

	var out []walk.CandidateFile
	for cand := range ch {
		if allow != nil && !allow[cand.Path] {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

func toSecretCustomPatterns(in []CustomPattern) []secret.CustomPattern {
	out := make([]secret.CustomPattern, len(in))
	for i, p := range in {
		out[i] = secret.CustomPattern{
			ID:              p.ID,
			Label:           p.Label,
			Regex:           p.Regex,
			Anchors:         p.Anchors,
			RequiresEntropy: p.RequiresEntropy,
			BaseConfidence:  p.BaseConfidence,
		}
	}
	return out
}

// pathIgnorerAdapter lets the walker prune directories/files matched by the
// ignore engine's configured path globs without the walk package importing
// internal/ignore.
type pathIgnorerAdapter struct {
	eng *ignore.Engine
}

func (a pathIgnorerAdapter) IsIgnored(path string, isDir bool) bool {
	return a.eng.IsPathIgnored(path)
}

func validateConfig(cfg ConfigView) error {
	if cfg.EntropyThreshold < 0 {
		return fmt.Errorf("entropy_threshold must be >= 0, got %g", cfg.EntropyThreshold)
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be >= 0, got %d", cfg.MaxFileSize)
	}
	if cfg.ThreadPercentage < 0 || cfg.ThreadPercentage > 100 {
		return fmt.Errorf("thread_percentage must be in [0,100], got %d", cfg.ThreadPercentage)
	}
	for _, cp := range cfg.CustomPatterns {
		if cp.ID == "" {
			return fmt.Errorf("custom pattern missing id")
		}
		if cp.Regex == "" {
			return fmt.Errorf("custom pattern %q missing regex", cp.ID)
		}
	}
	return nil
}
