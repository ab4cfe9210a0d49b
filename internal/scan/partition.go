package scan

import "runtime"

// maxWorkers computes the system-derived worker ceiling:
// max(1, floor(cpu_cores * thread_percentage/100)), clamped by
// cfg.MaxThreads when positive.
func maxWorkers(cfg ConfigView) int {
	pct := cfg.ThreadPercentage
	if pct <= 0 {
		pct = 100
	}
	cores := runtime.NumCPU()
	w := cores * pct / 100
	if w < 1 {
		w = 1
	}
	if cfg.MaxThreads > 0 && w > cfg.MaxThreads {
		w = cfg.MaxThreads
	}
	return w
}

// effectiveWorkers applies the domain adaptation table to avoid
// over-parallelizing small workloads.
func effectiveWorkers(cfg ConfigView, fileCount int) int {
	ceiling := maxWorkers(cfg)
	switch {
	case fileCount <= 10:
		return 1
	case fileCount <= 50:
		return ceilDiv(ceiling, 2)
	case fileCount <= 100:
		return ceilDiv(ceiling*3, 4)
	default:
		return ceiling
	}
}

func ceilDiv(n, d int) int {
	if d <= 0 {
		return n
	}
	return (n + d - 1) / d
}

// chooseMode resolves ConfigView.Mode/MinFilesForParallel into a concrete
// sequential-vs-parallel decision plus the effective worker count to use.
func chooseMode(cfg ConfigView, fileCount int) (ExecutionMode, int) {
	switch cfg.Mode {
	case ModeSequential:
		return ModeSequential, 1
	case ModeParallel:
		return ModeParallel, effectiveWorkers(cfg, fileCount)
	default:
		minParallel := cfg.MinFilesForParallel
		if minParallel <= 0 {
			minParallel = 1
		}
		if fileCount < minParallel {
			return ModeSequential, 1
		}
		return ModeParallel, effectiveWorkers(cfg, fileCount)
	}
}

// queueCapacity is the bounded job queue size: max(64, 4*N) per spec.
func queueCapacity(workers int) int {
	capacity := 4 * workers
	if capacity < 64 {
		capacity = 64
	}
	return capacity
}
