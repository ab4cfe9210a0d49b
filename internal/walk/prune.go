package walk

import "path/filepath"

// infraPruneNames are directory names that are never descended into,
// regardless of configuration. Unlike the configurable ignore engine, this
// match is on the exact directory name rather than a glob — it exists so a
// stray node_modules or .git tree can never be walked even before any
// configuration has loaded.
var infraPruneNames = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
	".cache":       true,
	".next":        true,
	".nuxt":        true,
	".idea":        true,
	".vscode":      true,
	"coverage":     true,
}

// ShouldPruneDir reports whether a directory with the given base name is
// always excluded from traversal.
func ShouldPruneDir(name string) bool {
	return infraPruneNames[name]
}

// infraPruneIgnorer adapts ShouldPruneDir to the Ignorer interface so the
// walker can chain it with the configured path-glob ignorer through a
// single CompositeIgnorer instead of consulting the two sources separately.
type infraPruneIgnorer struct{}

// IsIgnored reports whether path is a directory whose base name is on the
// hard-coded infra prune list. Files are never pruned by this ignorer.
func (infraPruneIgnorer) IsIgnored(path string, isDir bool) bool {
	if !isDir {
		return false
	}
	return ShouldPruneDir(filepath.Base(path))
}

var _ Ignorer = infraPruneIgnorer{}
