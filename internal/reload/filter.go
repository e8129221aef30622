package reload

import (
	"path/filepath"

	"github.com/emberforge/assetmon/internal/monitor"
)

// WithPatterns narrows a handler's filter to paths whose base name matches
// one of the filepath.Match patterns. The wrapped handler keeps the inner
// handler's key, so registration and removal are unaffected. An empty pattern
// list returns h unchanged.
func WithPatterns(h monitor.Handler, patterns []string) monitor.Handler {
	if len(patterns) == 0 {
		return h
	}
	return &patternHandler{inner: h, patterns: patterns}
}

type patternHandler struct {
	inner    monitor.Handler
	patterns []string
}

func (p *patternHandler) Test(path string, kind monitor.EventKind) bool {
	base := filepath.Base(path)
	for _, pattern := range p.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return p.inner.Test(path, kind)
		}
	}
	return false
}

func (p *patternHandler) Accept(batch monitor.Batch) { p.inner.Accept(batch) }

func (p *patternHandler) Key() string { return p.inner.Key() }
