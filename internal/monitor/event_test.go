package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "created", KindCreated.String())
	assert.Equal(t, "modified", KindModified.String())
	assert.Equal(t, "deleted", KindDeleted.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}

func TestBatch_Lookup(t *testing.T) {
	batch := Batch{
		{Path: "/assets/a.json", Kind: KindModified, Seq: 1},
		{Path: "/assets/b.json", Kind: KindDeleted, Seq: 2},
	}

	kind, ok := batch.Kind("/assets/a.json")
	assert.True(t, ok)
	assert.Equal(t, KindModified, kind)

	_, ok = batch.Kind("/assets/missing.json")
	assert.False(t, ok)

	assert.Equal(t, []string{"/assets/a.json", "/assets/b.json"}, batch.Paths())
}
