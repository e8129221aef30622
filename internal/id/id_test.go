package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate("hnd")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Prefix(t *testing.T) {
	id, err := Generate("hnd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "hnd-"))
	assert.Greater(t, len(id), len("hnd-"))
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate("hnd")
		assert.NotEmpty(t, id)
	})
}
