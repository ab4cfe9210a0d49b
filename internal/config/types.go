package config

// FileConfig is the TOML-facing shape of a guardscan.toml file or the
// global ~/.config/guardscan/config.toml. It mirrors scan.ConfigView
// field-for-field but keeps size/mode fields as their human-readable string
// form until fileConfigToFlatMap and Resolve parse them.
type FileConfig struct {
	IgnorePaths    []string `toml:"ignore_paths"`
	IgnorePatterns []string `toml:"ignore_patterns"`
	IgnoreComments []string `toml:"ignore_comments"`
	IgnoreTestCode *bool    `toml:"ignore_test_code"`
	TestAttributes []string `toml:"test_attributes"`
	TestModules    []string `toml:"test_modules"`

	CustomPatterns []CustomPatternConfig `toml:"custom_patterns"`

	EntropyThreshold *float64 `toml:"entropy_threshold"`
	MaxFileSize      string   `toml:"max_file_size"`
	IncludeBinary    *bool    `toml:"include_binary"`

	MaxThreads          *int   `toml:"max_threads"`
	ThreadPercentage    *int   `toml:"thread_percentage"`
	MinFilesForParallel *int   `toml:"min_files_for_parallel"`
	Mode                string `toml:"mode"`
}

// CustomPatternConfig is the TOML shape of a single custom_patterns entry.
type CustomPatternConfig struct {
	ID              string   `toml:"id"`
	Label           string   `toml:"label"`
	Regex           string   `toml:"regex"`
	Anchors         []string `toml:"anchors"`
	RequiresEntropy bool     `toml:"requires_entropy"`
	BaseConfidence  float64  `toml:"base_confidence"`
}
