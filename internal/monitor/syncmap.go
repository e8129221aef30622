package monitor

import "sync"

// syncMap is a type-safe concurrent map used for the service's task and
// handler tables. Registration is rare relative to dispatch, so an RWMutex
// over a plain map beats sync.Map here and keeps the compare-and-delete the
// retire path needs trivial.
//
// V is constrained to comparable so entries can be removed or replaced only
// when the caller still holds the current value, which is how the service
// resolves the retiring-task-versus-new-event race.
type syncMap[K comparable, V comparable] struct {
	mu sync.RWMutex
	m  map[K]V
}

func newSyncMap[K comparable, V comparable]() *syncMap[K, V] {
	return &syncMap[K, V]{m: make(map[K]V)}
}

// Load returns the value stored for key, if any.
func (sm *syncMap[K, V]) Load(key K) (value V, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.m[key]
	return
}

// LoadOrStore returns the existing value for key if present, otherwise it
// stores and returns value. loaded is true if the value was already present.
func (sm *syncMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	sm.mu.RLock()
	actual, loaded = sm.m[key]
	sm.mu.RUnlock()
	if loaded {
		return actual, true
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Re-check: another goroutine may have stored between the two locks.
	actual, loaded = sm.m[key]
	if loaded {
		return actual, true
	}
	sm.m[key] = value
	return value, false
}

// Delete removes key unconditionally.
func (sm *syncMap[K, V]) Delete(key K) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.m, key)
}

// CompareAndDelete removes key only if it still maps to old. It reports
// whether the entry was deleted.
func (sm *syncMap[K, V]) CompareAndDelete(key K, old V) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if current, ok := sm.m[key]; ok && current == old {
		delete(sm.m, key)
		return true
	}
	return false
}

// Range calls fn for each entry over a snapshot of the map, so fn may mutate
// the map freely.
func (sm *syncMap[K, V]) Range(fn func(key K, value V)) {
	sm.mu.RLock()
	snapshot := make(map[K]V, len(sm.m))
	for k, v := range sm.m {
		snapshot[k] = v
	}
	sm.mu.RUnlock()

	for k, v := range snapshot {
		fn(k, v)
	}
}

// Len returns the number of entries.
func (sm *syncMap[K, V]) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.m)
}
