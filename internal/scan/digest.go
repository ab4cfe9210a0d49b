package scan

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// ConfigDigest hashes a canonical string form of cfg so two ConfigView
// values with identical settings produce the same digest regardless of
// slice ordering in the source (maps have none; we sort explicitly).
func ConfigDigest(cfg ConfigView) string {
	var b strings.Builder

	writeSorted := func(name string, items []string) {
		sorted := append([]string(nil), items...)
		sort.Strings(sorted)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(sorted, ","))
		b.WriteByte(';')
	}

	writeSorted("ignore_paths", cfg.IgnorePaths)
	writeSorted("ignore_patterns", cfg.IgnorePatterns)
	writeSorted("ignore_comments", cfg.IgnoreComments)
	writeSorted("test_attributes", cfg.TestAttributes)
	writeSorted("test_modules", cfg.TestModules)

	b.WriteString("ignore_test_code=")
	b.WriteString(strconv.FormatBool(cfg.IgnoreTestCode))
	b.WriteByte(';')

	custom := append([]CustomPattern(nil), cfg.CustomPatterns...)
	sort.Slice(custom, func(i, j int) bool { return custom[i].ID < custom[j].ID })
	for _, cp := range custom {
		fmt.Fprintf(&b, "custom:%s:%s:%s:%s:%v:%g;", cp.ID, cp.Label, cp.Regex, strings.Join(cp.Anchors, ","), cp.RequiresEntropy, cp.BaseConfidence)
	}

	fmt.Fprintf(&b, "entropy_threshold=%g;max_file_size=%d;include_binary=%v;", cfg.EntropyThreshold, cfg.MaxFileSize, cfg.IncludeBinary)
	fmt.Fprintf(&b, "max_threads=%d;thread_percentage=%d;min_files_for_parallel=%d;mode=%s;", cfg.MaxThreads, cfg.ThreadPercentage, cfg.MinFilesForParallel, cfg.Mode)

	h := xxh3.HashString128(b.String()).Bytes()
	return hex.EncodeToString(h[:])
}

// ruleVersion truncates a config digest to the 8 hex characters Finding
// carries for pattern-set traceability.
func ruleVersion(digest string) string {
	if len(digest) < 8 {
		return digest
	}
	return digest[:8]
}
