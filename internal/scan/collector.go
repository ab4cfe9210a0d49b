package scan

import (
	"sort"
	"sync"
)

// collector merges per-worker Finding buffers at join, sorts them by
// (path, line, pattern_id), and collapses duplicates keyed on
// (path, line, pattern_id, excerpt). Each worker accumulates findings in a
// local slice and calls Submit exactly once, at worker exit — no locks are
// held across a file scan.
type collector struct {
	mu  sync.Mutex
	all []Finding
}

func newCollector() *collector {
	return &collector{}
}

// Submit appends a worker's local findings buffer to the shared set.
func (c *collector) Submit(findings []Finding) {
	if len(findings) == 0 {
		return
	}
	c.mu.Lock()
	c.all = append(c.all, findings...)
	c.mu.Unlock()
}

// Finish sorts every submitted finding and collapses duplicates, per the
// report's ordering invariant.
func (c *collector) Finish() []Finding {
	c.mu.Lock()
	all := append([]Finding(nil), c.all...)
	c.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.PatternID < b.PatternID
	})

	type dedupKey struct {
		path, patternID, excerpt string
		line                     uint32
	}
	seen := make(map[dedupKey]bool, len(all))
	out := all[:0]
	for _, f := range all {
		k := dedupKey{path: f.Path, patternID: f.PatternID, excerpt: f.Excerpt, line: f.Line}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	if out == nil {
		return []Finding{}
	}
	return out
}
