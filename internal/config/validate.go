package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dlclark/regexp2"

	"github.com/guardscan/guardscan/internal/scan"
)

// Validate checks a resolved ConfigView for hard errors: malformed glob
// patterns, custom patterns with missing fields or regexes that fail to
// compile, and out-of-range numeric settings. Every returned ValidationError
// has Severity "error"; callers should treat a non-empty result as
// ConfigInvalid.
func Validate(v scan.ConfigView) []ValidationError {
	var errs []ValidationError

	errs = append(errs, validateGlobPatterns("ignore_paths", v.IgnorePaths)...)

	if v.EntropyThreshold < 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "entropy_threshold",
			Message:  fmt.Sprintf("must be >= 0, got %g", v.EntropyThreshold),
		})
	}

	if v.MaxFileSize < 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "max_file_size",
			Message:  fmt.Sprintf("must be >= 0, got %d", v.MaxFileSize),
		})
	}

	if v.ThreadPercentage < 0 || v.ThreadPercentage > 100 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "thread_percentage",
			Message:  fmt.Sprintf("must be in [0,100], got %d", v.ThreadPercentage),
			Suggest:  "set thread_percentage between 1 and 100",
		})
	}

	for i, cp := range v.CustomPatterns {
		field := fmt.Sprintf("custom_patterns[%d]", i)
		if cp.ID == "" {
			errs = append(errs, ValidationError{Severity: "error", Field: field + ".id", Message: "must not be empty"})
			continue
		}
		if cp.Regex == "" {
			errs = append(errs, ValidationError{Severity: "error", Field: field + ".regex", Message: "must not be empty"})
			continue
		}
		if _, err := regexp2.Compile(cp.Regex, regexp2.None); err != nil {
			errs = append(errs, ValidationError{
				Severity: "error",
				Field:    field + ".regex",
				Message:  fmt.Sprintf("invalid regex: %v", err),
			})
		}
	}

	return errs
}

func validateGlobPatterns(field string, patterns []string) []ValidationError {
	var errs []ValidationError
	for i, p := range patterns {
		if _, err := doublestar.Match(p, "probe"); err != nil {
			errs = append(errs, ValidationError{
				Severity: "error",
				Field:    fmt.Sprintf("%s[%d]", field, i),
				Message:  fmt.Sprintf("invalid glob pattern %q: %v", p, err),
			})
		}
	}
	return errs
}

// Lint runs soft, advisory checks over a resolved ConfigView: conditions
// that are legal but likely indicate a mistake. Unlike Validate, a non-empty
// Lint result does not block a scan.
func Lint(v scan.ConfigView) []LintResult {
	var results []LintResult

	seen := make(map[string]int, len(v.CustomPatterns))
	for i, cp := range v.CustomPatterns {
		if cp.ID == "" {
			continue
		}
		if first, ok := seen[cp.ID]; ok {
			results = append(results, LintResult{
				Code: "duplicate-pattern-id",
				ValidationError: ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("custom_patterns[%d].id", i),
					Message:  fmt.Sprintf("duplicates custom_patterns[%d].id %q; both entries are matched and report findings under the same id", first, cp.ID),
					Suggest:  "give every custom pattern a unique id",
				},
			})
			continue
		}
		seen[cp.ID] = i
	}

	for i, p := range v.IgnorePaths {
		if p == "**" || p == "**/*" {
			results = append(results, LintResult{
				Code: "broad-ignore-glob",
				ValidationError: ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("ignore_paths[%d]", i),
					Message:  fmt.Sprintf("pattern %q ignores the entire scan root", p),
					Suggest:  "narrow the pattern to the directories actually intended to be skipped",
				},
			})
		}
	}

	if v.EntropyThreshold > 0 && v.EntropyThreshold < 2.0 {
		results = append(results, LintResult{
			Code: "low-entropy-threshold",
			ValidationError: ValidationError{
				Severity: "warning",
				Field:    "entropy_threshold",
				Message:  fmt.Sprintf("threshold %g bits/symbol is unusually low and will flag ordinary text", v.EntropyThreshold),
				Suggest:  "most deployments use a threshold between 3.0 and 4.0",
			},
		})
	}

	return results
}
