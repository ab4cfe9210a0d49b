package scan

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/guardscan/guardscan/internal/walk"
)

// ProgressFunc is the injected progress callback: worker id, scanned so far,
// total estimate.
type ProgressFunc func(workerID int, scannedSoFar, totalEstimate uint64)

const (
	progressCadenceSequential = 10
	progressCadenceParallel   = 5
)

// runnerStats mirrors dupedog's atomic-counter stats struct: lock-free
// updates from any worker, a consistent-enough snapshot for progress.
type runnerStats struct {
	filesEnumerated atomic.Uint64
	filesScanned    atomic.Uint64
	bytesRead       atomic.Uint64
	cancelled       atomic.Bool
}

// runScan dispatches to the sequential or parallel runner and returns the
// collected findings, warnings, and stats. candidates is pre-materialized
// here only because the caller (Scan) already buffered them for worker-count
// estimation (§4.2); runners themselves never re-walk the filesystem.
func runScan(ctx context.Context, cfg ConfigView, scanner *fileScanner, candidates []walk.CandidateFile, progress ProgressFunc) ([]Finding, []Warning, runnerStats) {
	mode, workers := chooseMode(cfg, len(candidates))
	logger := slog.Default().With("component", "runner")

	stats := runnerStats{}
	stats.filesEnumerated.Store(uint64(len(candidates)))

	col := newCollector()
	var warnings []Warning
	var warnMu sync.Mutex

	addWarning := func(w *Warning) {
		if w == nil {
			return
		}
		warnMu.Lock()
		warnings = append(warnings, *w)
		warnMu.Unlock()
	}

	if mode == ModeSequential {
		logger.Debug("running sequential", "files", len(candidates))
		local := make([]Finding, 0, 16)
		var scannedCount uint64
		for _, cand := range candidates {
			if ctx.Err() != nil {
				stats.cancelled.Store(true)
				break
			}
			res := scanner.Scan(cand)
			stats.bytesRead.Add(res.bytesRead)
			scannedCount++
			stats.filesScanned.Store(scannedCount)
			addWarning(res.warning)
			local = append(local, res.findings...)

			if progress != nil && scannedCount%progressCadenceSequential == 0 {
				progress(0, scannedCount, uint64(len(candidates)))
			}
		}
		col.Submit(local)
		return col.Finish(), warnings, stats
	}

	logger.Debug("running parallel", "files", len(candidates), "workers", workers)
	queue := make(chan walk.CandidateFile, queueCapacity(workers))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var scannedCount atomic.Uint64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		workerID := w
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			local := make([]Finding, 0, 16)
			defer func() { col.Submit(local) }()

			for cand := range queue {
				if ctx.Err() != nil {
					stats.cancelled.Store(true)
					continue
				}
				res := scanner.Scan(cand)
				stats.bytesRead.Add(res.bytesRead)
				n := scannedCount.Add(1)
				stats.filesScanned.Store(n)
				addWarning(res.warning)
				local = append(local, res.findings...)

				if progress != nil && n%progressCadenceParallel == 0 {
					progress(workerID, n, uint64(len(candidates)))
				}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, cand := range candidates {
			select {
			case queue <- cand:
			case <-ctx.Done():
				stats.cancelled.Store(true)
				return
			}
		}
	}()

	wg.Wait()

	if ctx.Err() != nil {
		stats.cancelled.Store(true)
	}

	return col.Finish(), warnings, stats
}
