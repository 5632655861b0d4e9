package uuid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanoIDGenerator_Generate(t *testing.T) {
	gen := NewNanoIDGenerator(24)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := gen.Generate()
		assert.NoError(t, err)
		assert.Len(t, id, 24)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected rune %q", r)
		}
		assert.False(t, seen[id], "duplicated id %s", id)
		seen[id] = true
	}
}

func TestNewNanoIDGenerator_PanicsOnZeroLength(t *testing.T) {
	assert.Panics(t, func() { NewNanoIDGenerator(0) })
}
