package monitor

import (
	"sync"
	"sync/atomic"
	"time"
)

// debounceTask accumulates raw events for one directory over a quiet window
// and produces one deduplicated, arrival-ordered batch per dispatch.
//
// A task is live while at least one undelivered event is pending for its
// directory or a scheduled run has not yet confirmed it idle. The first
// scheduled run that observes no new events retires the task and removes it
// from the owning service's task table.
//
// The watch goroutine is the only writer into the accumulator; the scheduler
// goroutine swaps it out in run. Both sides take mu for the duration of the
// touch, which closes the window between the idle check and a late addPath:
// an event either lands before the idle decision and is batched, or it
// observes retired and the service replaces the task.
type debounceTask struct {
	svc *Service
	dir string

	// dirty records that events arrived since the last run. Read-and-cleared
	// atomically at the top of each run.
	dirty atomic.Bool

	mu      sync.Mutex
	events  map[string]PathEvent // path -> latest event in the window
	order   []string             // paths in first-arrival order
	timer   *time.Timer          // pending self-reschedule, nil before first event
	retired bool
}

func newDebounceTask(svc *Service, dir string) *debounceTask {
	return &debounceTask{
		svc:    svc,
		dir:    dir,
		events: make(map[string]PathEvent),
	}
}

// addPath records ev, overwriting any earlier event for the same path in the
// current window (last-write-wins). It reports false if the task has already
// retired, in which case the caller must install a fresh task and retry.
func (t *debounceTask) addPath(ev PathEvent) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.retired {
		return false
	}
	if _, seen := t.events[ev.Path]; !seen {
		t.order = append(t.order, ev.Path)
	}
	t.events[ev.Path] = ev
	t.dirty.Store(true)
	if t.timer == nil {
		t.scheduleLocked()
	}
	return true
}

// removePath drops a pending, undelivered event for path, e.g. when the path
// has been invalidated before dispatch. If the accumulator becomes empty the
// task cancels itself.
func (t *debounceTask) removePath(path string) {
	t.mu.Lock()
	if t.retired {
		t.mu.Unlock()
		return
	}
	if _, ok := t.events[path]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.events, path)
	for i, p := range t.order {
		if p == path {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	if len(t.events) > 0 {
		t.mu.Unlock()
		return
	}
	t.retired = true
	t.dirty.Store(false)
	t.stopTimerLocked()
	t.mu.Unlock()

	t.svc.dropTask(t)
}

// markChanged forces the next scheduled run to re-process instead of retiring,
// without adding data. Reports false if the task has already retired.
func (t *debounceTask) markChanged() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.retired {
		return false
	}
	t.dirty.Store(true)
	return true
}

// run is the scheduled entry point, invoked on the scheduler goroutine.
//
// If no events arrived since the last run the task is idle: it cancels its
// schedule, deregisters from the service and returns nil. Otherwise it swaps
// the accumulator for a fresh one, reschedules itself after the quiet window
// and returns the snapshot for dispatch. The returned batch may be empty when
// only markChanged fired; the service skips dispatch for empty batches.
func (t *debounceTask) run() Batch {
	t.mu.Lock()
	if t.retired {
		t.mu.Unlock()
		return nil
	}
	if !t.dirty.Swap(false) {
		t.retired = true
		t.stopTimerLocked()
		t.mu.Unlock()
		t.svc.dropTask(t)
		return nil
	}

	batch := make(Batch, 0, len(t.order))
	for _, p := range t.order {
		batch = append(batch, t.events[p])
	}
	t.events = make(map[string]PathEvent)
	t.order = nil
	t.scheduleLocked()
	t.mu.Unlock()

	return batch
}

// cancel retires the task without dispatching. Used when the directory's
// watch is removed or the service shuts down; the caller owns the task-table
// entry.
func (t *debounceTask) cancel() {
	t.mu.Lock()
	t.retired = true
	t.dirty.Store(false)
	t.stopTimerLocked()
	t.mu.Unlock()
}

// pending returns the number of undelivered events, for tests and logging.
func (t *debounceTask) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *debounceTask) scheduleLocked() {
	t.timer = time.AfterFunc(t.svc.opts.DebounceWindow, func() {
		t.svc.enqueue(t)
	})
}

func (t *debounceTask) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
