package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable name constants for GUARDSCAN_ prefixed overrides.
const (
	EnvEntropyThreshold = "GUARDSCAN_ENTROPY_THRESHOLD"
	EnvMaxFileSize      = "GUARDSCAN_MAX_FILE_SIZE"
	EnvIncludeBinary    = "GUARDSCAN_INCLUDE_BINARY"
	EnvThreadPercentage = "GUARDSCAN_THREAD_PERCENTAGE"
	EnvMaxThreads       = "GUARDSCAN_MAX_THREADS"
	EnvMode             = "GUARDSCAN_MODE"
	EnvIgnorePaths      = "GUARDSCAN_IGNORE_PATHS"
	// EnvLogFormat overrides the log output format (not a ConfigView field).
	EnvLogFormat = "GUARDSCAN_LOG_FORMAT"
)

// buildEnvMap reads GUARDSCAN_* environment variables and returns a flat map
// suitable for use with a koanf confmap provider. Only non-empty env vars
// that parse successfully are included; invalid values are silently skipped
// so a bad env var does not block the whole resolution pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvEntropyThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m["entropy_threshold"] = f
		}
	}
	if v := os.Getenv(EnvMaxFileSize); v != "" {
		if n, err := ParseSize(v); err == nil {
			m["max_file_size"] = n
		}
	}
	if v := os.Getenv(EnvIncludeBinary); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["include_binary"] = b
		}
	}
	if v := os.Getenv(EnvThreadPercentage); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["thread_percentage"] = n
		}
	}
	if v := os.Getenv(EnvMaxThreads); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["max_threads"] = n
		}
	}
	if v := os.Getenv(EnvMode); v != "" {
		if _, err := parseMode(v); err == nil {
			m["mode"] = v
		}
	}
	if v := os.Getenv(EnvIgnorePaths); v != "" {
		m["ignore_paths"] = strings.Split(v, ",")
	}

	return m
}
