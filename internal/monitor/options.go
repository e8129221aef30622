package monitor

import (
	"path/filepath"
	"strings"
	"time"
)

// DefaultDebounceWindow is the quiet period after which accumulated events
// for a directory are considered final and dispatched.
const DefaultDebounceWindow = 1000 * time.Millisecond

// Options configures the monitor service.
type Options struct {
	// DebounceWindow is the quiet period per directory. Defaults to
	// DefaultDebounceWindow.
	DebounceWindow time.Duration

	// IgnorePatterns are filepath.Match patterns applied to base names of
	// event paths. Matching events are dropped before debouncing.
	IgnorePatterns []string

	// IgnoreHidden drops events for dot-files and files under dot-directories.
	IgnoreHidden bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = DefaultDebounceWindow
	}

	// Default ignore set covers editor scratch files and OS litter. Only
	// applied when patterns were not specified at all (nil, not empty): an
	// explicit empty slice means "ignore nothing".
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"Thumbs.db",
			"*.tmp",
			"*.swp",
			"*.swx",
			"*~",
		}
		o.IgnoreHidden = true
	}
}

// shouldIgnore checks if a path matches the ignore configuration.
func (o *Options) shouldIgnore(path string) bool {
	if o.IgnoreHidden {
		parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
		for _, part := range parts {
			if strings.HasPrefix(part, ".") && part != "." && part != ".." {
				return true
			}
		}
	}

	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}

	return false
}
