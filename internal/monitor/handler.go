package monitor

import (
	"sync"

	"github.com/emberforge/assetmon/internal/id"
)

// Handler is the contract a consumer implements to receive change batches for
// a watched directory.
//
// Test is called once per batch entry on the scheduler goroutine and must be
// fast and side-effect free (no I/O). Accept receives the filtered batch and
// must offload heavy work to its own goroutine rather than block the scheduler,
// which is shared by every watched directory. Key identifies the handler for
// registration and removal; registering two handlers with the same key on the
// same directory is rejected.
type Handler interface {
	Test(path string, kind EventKind) bool
	Accept(batch Batch)
	Key() string
}

// funcHandler adapts plain functions to the Handler interface.
type funcHandler struct {
	key    string
	filter func(path string, kind EventKind) bool
	accept func(batch Batch)
}

// NewHandler builds a Handler from a filter and a batch callback. A nil filter
// accepts every event. If key is empty a unique one is generated, which makes
// the handler removable only via the value returned by Key.
func NewHandler(key string, filter func(path string, kind EventKind) bool, accept func(batch Batch)) Handler {
	if key == "" {
		key = id.MustGenerate("hnd")
	}
	return &funcHandler{key: key, filter: filter, accept: accept}
}

func (h *funcHandler) Test(path string, kind EventKind) bool {
	if h.filter == nil {
		return true
	}
	return h.filter(path, kind)
}

func (h *funcHandler) Accept(batch Batch) {
	if h.accept != nil {
		h.accept(batch)
	}
}

func (h *funcHandler) Key() string { return h.key }

// handlerSet holds the handlers registered for one directory. Registration is
// rare relative to dispatch, so dispatch takes a snapshot copy under a read
// lock rather than holding the lock across handler calls.
type handlerSet struct {
	mu       sync.RWMutex
	handlers []Handler
}

func newHandlerSet() *handlerSet {
	return &handlerSet{}
}

// add registers h, rejecting a duplicate key.
func (s *handlerSet) add(h Handler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.handlers {
		if existing.Key() == h.Key() {
			return false
		}
	}
	s.handlers = append(s.handlers, h)
	return true
}

// remove deregisters the handler with the given key and reports whether it
// was present. The second result is the number of handlers remaining.
func (s *handlerSet) remove(key string) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.handlers {
		if h.Key() == key {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return true, len(s.handlers)
		}
	}
	return false, len(s.handlers)
}

// snapshot returns a copy of the registered handlers safe to iterate without
// holding the lock.
func (s *handlerSet) snapshot() []Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Handler, len(s.handlers))
	copy(out, s.handlers)
	return out
}

func (s *handlerSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}
