package secret

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Prefilter is a multi-pattern substring matcher built from the union of
// every registered pattern's anchor literals. FileScanner runs it once per
// buffer; only patterns whose anchors occur in the buffer are evaluated by
// the regex stage, matching the Aho-Corasick-style prefilter design.
type Prefilter struct {
	automaton    ahocorasick.AhoCorasick
	anchorOwners [][]int // anchorOwners[i] = indices into the pattern slice that own anchor i
}

// NewPrefilter builds the anchor automaton for the given compiled patterns.
// patterns[i] corresponds to the i-th entry the caller will later index into
// when inspecting SurvivingPatterns.
func NewPrefilter(patterns []Pattern) *Prefilter {
	var anchors []string
	var owners [][]int
	seen := make(map[string]int)

	for pIdx, p := range patterns {
		for _, a := range p.Anchors {
			if a == "" {
				continue
			}
			if idx, ok := seen[a]; ok {
				owners[idx] = append(owners[idx], pIdx)
				continue
			}
			seen[a] = len(anchors)
			anchors = append(anchors, a)
			owners = append(owners, []int{pIdx})
		}
	}

	// Several catalog patterns are case-insensitive (?i) regexes with
	// lowercase-only anchors (generic_context_secret, cohere_key,
	// mistral_key, ...). The automaton has to match case-insensitively too,
	// or an uppercase identifier like PASSWORD/API_KEY never surfaces its
	// anchor and the file is dropped before MatchLine ever runs it against
	// the regex. Over-matching here just means an extra regex check.
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostFirstMatch,
		DFA:                  true,
	})

	return &Prefilter{
		automaton:    builder.Build(anchors),
		anchorOwners: owners,
	}
}

// SurvivingPatterns scans buf and returns the set of pattern indexes (into
// the slice passed to NewPrefilter) whose anchors occur at least once. The
// regex stage only needs to evaluate these patterns.
func (p *Prefilter) SurvivingPatterns(buf []byte) map[int]bool {
	survivors := make(map[int]bool)
	iter := p.automaton.Iter(string(buf))
	for m := iter.Next(); m != nil; m = iter.Next() {
		pIdx := m.Pattern()
		if pIdx < 0 || pIdx >= len(p.anchorOwners) {
			continue
		}
		for _, owner := range p.anchorOwners[pIdx] {
			survivors[owner] = true
		}
	}
	return survivors
}
