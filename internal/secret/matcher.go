package secret

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dlclark/regexp2"
)

// Hit is a regex match within a single line, the PatternHit of the design:
// an intermediate result that EntropyValidator may still discard.
type Hit struct {
	PatternID       string
	Label           string
	MatchStart      int // rune offset (regexp2 match index) of the excerpt span within the line
	MatchEnd        int
	Capture         string
	RequiresEntropy bool
	BaseConfidence  float64
}

type compiledPattern struct {
	Pattern
	re *regexp2.Regexp
}

// Options configures a Matcher. It mirrors the relevant ConfigView fields
// without depending on the scanning core's types.
type Options struct {
	CustomPatterns []CustomPattern
}

// Matcher owns the compiled registry of secret patterns plus the keyword
// anchor automaton built from their union. Regex sources are frozen at
// construction; Matcher is safe to share read-only across workers.
type Matcher struct {
	patterns  []compiledPattern
	prefilter *Prefilter
	logger    *slog.Logger
}

// NewMatcher compiles the built-in pattern catalog plus any custom patterns
// supplied by configuration. A compile failure in any pattern (built-in or
// custom) is returned as an error — the caller treats this as a
// ConfigInvalid fatal condition before any worker starts.
func NewMatcher(opts Options) (*Matcher, error) {
	all := BuiltinPatterns()
	for _, cp := range opts.CustomPatterns {
		all = append(all, Pattern{
			ID:              cp.ID,
			Label:           cp.Label,
			Regex:           cp.Regex,
			Anchors:         cp.Anchors,
			RequiresEntropy: cp.RequiresEntropy,
			BaseConfidence:  cp.BaseConfidence,
		})
	}

	compiled := make([]compiledPattern, 0, len(all))
	for _, p := range all {
		re, err := regexp2.Compile(p.Regex, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p.ID, err)
		}
		compiled = append(compiled, compiledPattern{Pattern: p, re: re})
	}

	patternsOnly := make([]Pattern, len(all))
	copy(patternsOnly, all)

	return &Matcher{
		patterns:  compiled,
		prefilter: NewPrefilter(patternsOnly),
		logger:    slog.Default().With("component", "pattern-matcher"),
	}, nil
}

// matcherCache holds compiled Matchers keyed by the scan config's digest, so
// a long-running caller that repeats the same configuration across many
// scans (a watch-mode loop, a test suite, a server) skips recompiling every
// pattern's regex. Callers that scan once and exit gain nothing from it and
// lose nothing either way; it is transparent.
var matcherCache sync.Map // digest string -> *Matcher

// NewMatcherCached returns the Matcher for digest, building and caching one
// via NewMatcher if this digest hasn't been seen before. digest is expected
// to be a ConfigDigest-style hash of the configuration that produced opts;
// callers are responsible for keying it on everything that affects pattern
// compilation (custom patterns), since NewMatcherCached trusts the digest
// completely and never re-validates opts against a cache hit.
func NewMatcherCached(digest string, opts Options) (*Matcher, error) {
	if cached, ok := matcherCache.Load(digest); ok {
		return cached.(*Matcher), nil
	}
	m, err := NewMatcher(opts)
	if err != nil {
		return nil, err
	}
	actual, _ := matcherCache.LoadOrStore(digest, m)
	return actual.(*Matcher), nil
}

// PrefilterSurvivors runs the keyword prefilter over the whole file buffer
// and returns the set of pattern indexes worth evaluating per line.
func (m *Matcher) PrefilterSurvivors(buf []byte) map[int]bool {
	return m.prefilter.SurvivingPatterns(buf)
}

// MatchLine evaluates every surviving pattern against a single line and
// returns every Hit found. survivors is the result of PrefilterSurvivors for
// the file; pass nil to evaluate every pattern unconditionally.
func (m *Matcher) MatchLine(line string, survivors map[int]bool) []Hit {
	var hits []Hit
	for idx, cp := range m.patterns {
		if survivors != nil && !survivors[idx] {
			continue
		}
		match, err := cp.re.FindStringMatch(line)
		for match != nil && err == nil {
			capture := match.String()
			start := match.Index
			end := match.Index + match.Length
			if cp.ExcerptGroup > 0 {
				if g := match.GroupByNumber(cp.ExcerptGroup); g != nil && len(g.Captures) > 0 {
					c := g.Captures[0]
					capture = c.String()
					start = c.Index
					end = c.Index + c.Length
				}
			}
			hits = append(hits, Hit{
				PatternID:       cp.ID,
				Label:           cp.Label,
				MatchStart:      start,
				MatchEnd:        end,
				Capture:         capture,
				RequiresEntropy: cp.RequiresEntropy,
				BaseConfidence:  cp.BaseConfidence,
			})
			match, err = cp.re.FindNextMatch(match)
		}
		if err != nil {
			m.logger.Debug("regex evaluation error", "pattern", cp.ID, "error", err)
		}
	}
	return hits
}

// Redact builds the redacted excerpt for a captured span: the first 4 and
// last 4 characters, middle replaced by an ellipsis. Spans of 8 characters
// or fewer are returned with every character kept and an ellipsis inserted
// at the midpoint, guaranteeing the length <= 11 invariant still holds.
func Redact(capture string) string {
	r := []rune(capture)
	if len(r) <= 8 {
		mid := len(r) / 2
		return string(r[:mid]) + "…" + string(r[mid:])
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}
