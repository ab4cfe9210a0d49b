// Package scan implements the secret-scanning core: a directory walk feeds a
// multi-stage pattern matcher running under a work-stealing executor, guarded
// by an ignore engine, producing a deterministic, sorted ScanReport.
//
// scan is the only package that wires internal/walk, internal/ignore, and
// internal/secret together; none of those leaf packages import scan, so the
// dependency graph stays one-directional.
package scan

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionMode selects how a scan is run.
type ExecutionMode int

const (
	ModeAuto ExecutionMode = iota
	ModeSequential
	ModeParallel
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeParallel:
		return "parallel"
	default:
		return "auto"
	}
}

// ScanScope describes which files within the root a job considers.
type ScanScope int

const (
	ScopeAll ScanScope = iota
	ScopeStaged
	ScopeUnstaged
	ScopePaths
)

// CustomPattern is a user-supplied secret pattern, the wire shape consumed
// from ConfigView.custom_patterns.
type CustomPattern struct {
	ID              string
	Label           string
	Regex           string
	Anchors         []string
	RequiresEntropy bool
	BaseConfidence  float64
}

// ConfigView is the immutable snapshot of user settings every stage of a
// scan reads from. It is built once per scan and never mutated afterward;
// no worker may observe a change to it mid-scan.
type ConfigView struct {
	IgnorePaths    []string
	IgnorePatterns []string
	IgnoreComments []string
	IgnoreTestCode bool
	TestAttributes []string
	TestModules    []string

	CustomPatterns []CustomPattern

	EntropyThreshold float64
	MaxFileSize      int64
	IncludeBinary    bool

	MaxThreads          int
	ThreadPercentage    int
	MinFilesForParallel int
	Mode                ExecutionMode
}

// ScanJob is the root request describing what to scan.
type ScanJob struct {
	ID     uuid.UUID
	Root   string
	Scope  ScanScope
	Paths  []string // used when Scope == ScopePaths
	Config ConfigView
}

// NewScanJob builds a ScanJob with a fresh correlation ID.
func NewScanJob(root string, scope ScanScope, cfg ConfigView) ScanJob {
	return ScanJob{ID: uuid.New(), Root: root, Scope: scope, Config: cfg}
}

// Finding is a confirmed secret detection.
type Finding struct {
	PatternID  string  `json:"pattern_id"`
	Label      string  `json:"label"`
	Path       string  `json:"path"`
	Line       uint32  `json:"line"`
	ColStart   uint32  `json:"col_start"`
	ColEnd     uint32  `json:"col_end"`
	Excerpt    string  `json:"excerpt"`
	Confidence float64 `json:"confidence"`
	// RuleVersion traces a finding back to the pattern set that produced
	// it: ConfigDigest truncated to 8 hex characters. Additive field, not
	// part of the wire schema's stability contract.
	RuleVersion string `json:"rule_version,omitempty"`
}

// WarningKind enumerates the non-fatal conditions surfaced in a ScanReport.
type WarningKind string

const (
	WarnPathUnreadable WarningKind = "PathUnreadable"
	WarnFileTooLarge   WarningKind = "FileTooLarge"
	WarnBinarySkipped  WarningKind = "BinarySkipped"
	WarnInternalPanic  WarningKind = "InternalPanic"
)

// Warning is a non-fatal condition encountered during a scan.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Path    string      `json:"path,omitempty"`
	Message string      `json:"message"`
}

// ReportStats are the wire-facing aggregate counters (JSON field names fixed
// by the external ScanReport schema).
type ReportStats struct {
	FilesEnumerated uint64 `json:"files_enumerated"`
	FilesScanned    uint64 `json:"files_scanned"`
	BytesRead       uint64 `json:"bytes_read"`
	Findings        uint64 `json:"findings"`
	WallMS          uint64 `json:"wall_ms"`
	Workers         uint64 `json:"workers"`
}

// ScanReport is the terminal artifact of a scan.
type ScanReport struct {
	Findings     []Finding     `json:"findings"`
	Warnings     []Warning     `json:"warnings"`
	Stats        ReportStats   `json:"stats"`
	Cancelled    bool          `json:"cancelled"`
	ConfigDigest string        `json:"config_digest"`
	Duration     time.Duration `json:"-"`
}
