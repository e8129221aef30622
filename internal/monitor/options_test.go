package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden, "Should ignore hidden files by default")
	assert.Equal(t, 1000*time.Millisecond, opts.DebounceWindow, "Default debounce window should be 1s")
	assert.Contains(t, opts.IgnorePatterns, ".DS_Store", "Should ignore .DS_Store by default")
	assert.Contains(t, opts.IgnorePatterns, "*.swp", "Should ignore editor swap files by default")
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		DebounceWindow: 200 * time.Millisecond,
		IgnorePatterns: []string{"*.bak"},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden, "Custom ignore hidden should be preserved")
	assert.Equal(t, 200*time.Millisecond, opts.DebounceWindow, "Custom window should be preserved")
	assert.Equal(t, []string{"*.bak"}, opts.IgnorePatterns, "Custom patterns should be preserved")
}

func TestOptions_EmptyPatternsMeansIgnoreNothing(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden)
	assert.False(t, opts.shouldIgnore("/assets/file.tmp"))
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{
		IgnoreHidden:   true,
		IgnorePatterns: []string{"*.tmp", ".DS_Store", "*~"},
	}

	tests := []struct {
		name   string
		path   string
		expect bool
	}{
		{"hidden file", "/assets/.hidden", true},
		{"hidden directory", "/assets/.git/config", true},
		{"DS_Store", "/assets/.DS_Store", true},
		{"tmp file", "/assets/file.tmp", true},
		{"editor backup", "/assets/script.lua~", true},
		{"model file", "/assets/models/zombie.json", false},
		{"script file", "/assets/scripts/spawn.lua", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, opts.shouldIgnore(tt.path))
		})
	}
}
