package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guardscan/guardscan/internal/scan"
)

func TestValidate_AcceptsDefaults(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Validate(DefaultConfigView()))
}

func TestValidate_RejectsMalformedGlob(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.IgnorePaths = []string{"["}
	errs := Validate(v)
	if assert.NotEmpty(t, errs) {
		assert.Equal(t, "ignore_paths[0]", errs[0].Field)
	}
}

func TestValidate_RejectsOutOfRangeThreadPercentage(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.ThreadPercentage = 250
	errs := Validate(v)
	assert.NotEmpty(t, errs)
}

func TestValidate_RejectsBadCustomPatternRegex(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.CustomPatterns = []scan.CustomPattern{{ID: "bad", Regex: "("}}
	errs := Validate(v)
	if assert.NotEmpty(t, errs) {
		assert.Contains(t, errs[0].Field, "regex")
	}
}

func TestValidate_RejectsMissingCustomPatternID(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.CustomPatterns = []scan.CustomPattern{{Regex: "abc"}}
	errs := Validate(v)
	assert.NotEmpty(t, errs)
}

func TestLint_FlagsDuplicatePatternIDs(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.CustomPatterns = []scan.CustomPattern{
		{ID: "dup", Regex: "a"},
		{ID: "dup", Regex: "b"},
	}
	results := Lint(v)
	found := false
	for _, r := range results {
		if r.Code == "duplicate-pattern-id" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLint_FlagsBroadIgnoreGlob(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.IgnorePaths = []string{"**"}
	results := Lint(v)
	found := false
	for _, r := range results {
		if r.Code == "broad-ignore-glob" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLint_EmptyForReasonableConfig(t *testing.T) {
	t.Parallel()
	v := DefaultConfigView()
	v.IgnorePaths = []string{"vendor/**"}
	assert.Empty(t, Lint(v))
}
