package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticIgnorer struct {
	ignored map[string]bool
}

func (s staticIgnorer) IsIgnored(path string, isDir bool) bool {
	return s.ignored[path]
}

func TestCompositeIgnorer_MatchesIfAnySourceMatches(t *testing.T) {
	t.Parallel()
	a := staticIgnorer{ignored: map[string]bool{"a.go": true}}
	b := staticIgnorer{ignored: map[string]bool{"b.go": true}}

	c := NewCompositeIgnorer(a, b)
	assert.True(t, c.IsIgnored("a.go", false))
	assert.True(t, c.IsIgnored("b.go", false))
	assert.False(t, c.IsIgnored("c.go", false))
}

func TestCompositeIgnorer_SkipsNilIgnorers(t *testing.T) {
	t.Parallel()
	c := NewCompositeIgnorer(nil, staticIgnorer{ignored: map[string]bool{"a.go": true}}, nil)
	assert.Equal(t, 1, c.IgnorerCount())
	assert.True(t, c.IsIgnored("a.go", false))
}

func TestCompositeIgnorer_EmptyChainIgnoresNothing(t *testing.T) {
	t.Parallel()
	c := NewCompositeIgnorer()
	assert.False(t, c.IsIgnored("anything", false))
}
