package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/guardscan/guardscan/internal/ignore"
	"github.com/guardscan/guardscan/internal/secret"
	"github.com/guardscan/guardscan/internal/walk"
)

// streamThreshold is the file size above which content is read in chunks
// rather than loaded whole, per §4.4.
const streamThreshold = 256 * 1024

const readChunkSize = 64 * 1024

// fileScanner turns a single walk.CandidateFile into zero or more Findings,
// consulting the ignore engine and the pattern matcher. It holds no
// mutable state and is safe to share read-only across workers.
type fileScanner struct {
	cfg         ConfigView
	ignoreEng   *ignore.Engine
	matcher     *secret.Matcher
	confPolicy  secret.ConfidencePolicy
	ruleVersion string
	logger      *slog.Logger
}

func newFileScanner(cfg ConfigView, ignoreEng *ignore.Engine, matcher *secret.Matcher, digest string) *fileScanner {
	return &fileScanner{
		cfg:         cfg,
		ignoreEng:   ignoreEng,
		matcher:     matcher,
		confPolicy:  secret.DefaultConfidencePolicy,
		ruleVersion: ruleVersion(digest),
		logger:      slog.Default().With("component", "file-scanner"),
	}
}

// scanResult carries a file's findings plus the bytes actually read, so the
// caller can fold both into ScanStats.
type scanResult struct {
	findings  []Finding
	bytesRead uint64
	warning   *Warning
}

func (s *fileScanner) Scan(cand walk.CandidateFile) (res scanResult) {
	defer func() {
		if r := recover(); r != nil {
			res = scanResult{warning: &Warning{Kind: WarnInternalPanic, Path: cand.Path, Message: fmt.Sprint(r)}}
		}
	}()

	if s.ignoreEng.IsPathIgnored(cand.Path) {
		return scanResult{}
	}

	maxSize := s.cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = walk.DefaultMaxFileSize
	}
	large, _, err := walk.IsLargeFile(cand.AbsPath, maxSize)
	if err != nil {
		return scanResult{warning: &Warning{Kind: WarnPathUnreadable, Path: cand.Path, Message: err.Error()}}
	}
	if large {
		return scanResult{warning: &Warning{Kind: WarnFileTooLarge, Path: cand.Path, Message: "file exceeds max_file_size"}}
	}

	if !s.cfg.IncludeBinary {
		isBin, err := walk.IsBinaryFile(cand.AbsPath)
		if err == nil && isBin {
			return scanResult{warning: &Warning{Kind: WarnBinarySkipped, Path: cand.Path, Message: "binary content detected"}}
		}
	}

	lines, bytesRead, err := readLines(cand.AbsPath, cand.Size)
	if err != nil {
		return scanResult{warning: &Warning{Kind: WarnPathUnreadable, Path: cand.Path, Message: err.Error()}}
	}

	lang := ignore.DetectLanguage(extOf(cand.Path))
	decision := s.ignoreEng.Decide(cand.Path, lines, lang)
	if decision.Kind == ignore.KindWholeFile {
		return scanResult{bytesRead: bytesRead}
	}

	buf := []byte(joinLines(lines))
	survivors := s.matcher.PrefilterSurvivors(buf)
	if len(survivors) == 0 {
		return scanResult{bytesRead: bytesRead}
	}

	var findings []Finding
	for i, line := range lines {
		lineNo := uint32(i + 1)
		if decision.Masks(lineNo) {
			continue
		}
		hits := s.matcher.MatchLine(line, survivors)
		for _, h := range hits {
			conf := h.BaseConfidence
			if h.RequiresEntropy {
				ent := secret.Evaluate(h.Capture, s.entropyThreshold())
				if !ent.LikelyRandom {
					continue
				}
				conf = s.confPolicy(conf, ent)
			}
			findings = append(findings, Finding{
				PatternID:   h.PatternID,
				Label:       h.Label,
				Path:        cand.Path,
				Line:        lineNo,
				ColStart:    uint32(h.MatchStart),
				ColEnd:      uint32(h.MatchEnd),
				Excerpt:     secret.Redact(h.Capture),
				Confidence:  conf,
				RuleVersion: s.ruleVersion,
			})
		}
	}

	return scanResult{findings: findings, bytesRead: bytesRead}
}

func (s *fileScanner) entropyThreshold() float64 {
	if s.cfg.EntropyThreshold > 0 {
		return s.cfg.EntropyThreshold
	}
	return 3.0
}

// readLines loads file content as a slice of lines, splitting into chunked
// reads above streamThreshold and whole reads below it. Non-UTF-8 bytes are
// treated as latin-1 for matching purposes by simply not validating
// encoding — string() over arbitrary bytes never errors in Go.
func readLines(path string, size int64) ([]string, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var data []byte
	if size > streamThreshold {
		data, err = readChunked(f)
	} else {
		data, err = io.ReadAll(f)
	}
	if err != nil {
		return nil, 0, err
	}

	lines := splitLines(data)
	return lines, uint64(len(data)), nil
}

func readChunked(f *os.File) ([]byte, error) {
	var buf bytes.Buffer
	r := bufio.NewReaderSize(f, readChunkSize)
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func splitLines(data []byte) []string {
	s := string(data)
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			end := i
			if end > start && s[end-1] == '\r' {
				end--
			}
			lines = append(lines, s[start:end])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func joinLines(lines []string) string {
	var b bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	return b.String()
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
