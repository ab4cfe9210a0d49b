package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldPruneDir(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"node_modules", "target", "dist", "build", ".git", "__pycache__", ".venv", "venv", "vendor", ".cache", ".next", ".nuxt", ".idea", ".vscode", "coverage"} {
		assert.True(t, ShouldPruneDir(name), name)
	}
	for _, name := range []string{"src", "internal", "cmd", "docs", "testdata"} {
		assert.False(t, ShouldPruneDir(name), name)
	}
}
