// Package monitor implements debounced directory watching: raw filesystem
// notifications are accumulated per directory over a quiet window, collapsed
// to the latest event per path, and delivered as ordered batches to the
// handlers registered for that directory.
package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/emberforge/assetmon/internal/errors"
)

// Service owns the watch goroutine and the scheduler goroutine and bridges
// raw backend events into debounced, filtered handler callbacks.
//
// Three execution contexts touch a Service: caller goroutines registering and
// removing handlers, the single watch goroutine feeding debounce tasks, and
// the single scheduler goroutine running task windows and handler dispatch.
// The scheduler is shared by all directories, so a slow Accept delays every
// other pending dispatch; handlers are contractually required to offload
// heavy work (see Handler).
type Service struct {
	logger  *slog.Logger
	opts    Options
	backend Backend

	tasks    *syncMap[string, *debounceTask]
	handlers *syncMap[string, *handlerSet]

	seq  atomic.Uint64
	runq chan *debounceTask
	done chan struct{}
	wg   sync.WaitGroup

	closed       atomic.Bool
	shutdownOnce sync.Once
	closeErr     error
}

// New creates a monitor service on top of backend and starts its watch and
// scheduler goroutines. The caller must call Shutdown to release them; there
// is no other supported teardown path.
func New(logger *slog.Logger, backend Backend, opts Options) *Service {
	opts.setDefaults()

	s := &Service{
		logger:   logger,
		opts:     opts,
		backend:  backend,
		tasks:    newSyncMap[string, *debounceTask](),
		handlers: newSyncMap[string, *handlerSet](),
		runq:     make(chan *debounceTask, 64),
		done:     make(chan struct{}),
	}

	s.wg.Add(2)
	go s.watchLoop()
	go s.schedulerLoop()

	return s
}

// MonitorDirectoryFiles registers handler for change batches under dir.
//
// The path must name an existing directory. Multiple handlers may watch the
// same directory; they share one OS watch and one debounce task, and each
// receives its own filtered view of every batch. Registering a second handler
// with the same key for the same directory fails with ErrAlreadyExists.
func (s *Service) MonitorDirectoryFiles(dir string, handler Handler) error {
	if s.closed.Load() {
		return errors.ErrShutDown
	}
	if handler == nil {
		return errors.InvalidArgument("nil handler")
	}

	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.InvalidArgumentf("stat %s", dir).WithCause(err)
	}
	if !info.IsDir() {
		return errors.InvalidArgumentf("not a directory: %s", dir)
	}

	set, existed := s.handlers.LoadOrStore(dir, newHandlerSet())
	if !set.add(handler) {
		return errors.AlreadyExists(fmt.Sprintf("handler %q already registered for %s", handler.Key(), dir))
	}

	if !existed {
		if err := s.backend.Add(dir); err != nil {
			s.handlers.CompareAndDelete(dir, set)
			return errors.WatchFailed(fmt.Sprintf("watch %s", dir), err)
		}
		s.logger.Info("watching directory", "dir", dir)
	}

	s.logger.Debug("registered handler", "dir", dir, "key", handler.Key())
	return nil
}

// RemoveMonitorDirectoryFiles deregisters the handler identified by key for
// dir. It returns ErrNotFound if no such registration exists. When the last
// handler for a directory is removed the OS watch is released and any live
// debounce task for the directory is cancelled, dropping undelivered events.
func (s *Service) RemoveMonitorDirectoryFiles(dir, key string) error {
	dir = filepath.Clean(dir)

	set, ok := s.handlers.Load(dir)
	if !ok {
		return errors.NotFoundf("no handlers registered for %s", dir)
	}
	removed, remaining := set.remove(key)
	if !removed {
		return errors.NotFoundf("no handler %q registered for %s", key, dir)
	}
	s.logger.Debug("removed handler", "dir", dir, "key", key)

	if remaining == 0 && s.handlers.CompareAndDelete(dir, set) {
		if err := s.backend.Remove(dir); err != nil {
			s.logger.Warn("failed to release watch", "dir", dir, "error", err)
		}
		if task, live := s.tasks.Load(dir); live {
			task.cancel()
			s.tasks.CompareAndDelete(dir, task)
		}
		s.logger.Info("released directory watch", "dir", dir)
	}

	return nil
}

// Shutdown stops the watch and scheduler goroutines, cancels all live
// debounce tasks and releases OS watch resources. Idempotent.
func (s *Service) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)

		s.tasks.Range(func(dir string, task *debounceTask) {
			task.cancel()
			s.tasks.CompareAndDelete(dir, task)
		})
		s.handlers.Range(func(dir string, set *handlerSet) {
			s.handlers.CompareAndDelete(dir, set)
		})

		s.closeErr = s.backend.Close()
		s.wg.Wait()
		s.logger.Info("monitor service stopped")
	})
	return s.closeErr
}

// watchLoop is the single goroutine draining the backend. Only this goroutine
// feeds events into debounce tasks; the single-writer rule is what keeps the
// per-task accumulator coherent.
func (s *Service) watchLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.backend.Events():
			if !ok {
				return
			}
			s.onChange(ev)
		case err, ok := <-s.backend.Errors():
			if !ok {
				return
			}
			s.logger.Warn("watch backend error", "error", err)
		}
	}
}

// onChange routes a raw event to the debounce task for its parent directory,
// creating one if absent.
//
// A task retires itself when a window passes with no events, and that races
// benignly with an event arriving right after the idle check: addPath on a
// retiring task reports false, the stale entry is dropped and a fresh task is
// installed. Events are never lost; worst case is a momentary duplicate task.
func (s *Service) onChange(ev PathEvent) {
	if s.opts.shouldIgnore(ev.Path) {
		return
	}

	dir := filepath.Dir(ev.Path)
	if _, registered := s.handlers.Load(dir); !registered {
		return
	}

	ev.Seq = s.seq.Add(1)
	s.logger.Debug("raw event", "path", ev.Path, "kind", ev.Kind.String(), "seq", ev.Seq)

	for {
		task, _ := s.tasks.LoadOrStore(dir, newDebounceTask(s, dir))
		if task.addPath(ev) {
			return
		}
		s.tasks.CompareAndDelete(dir, task)
	}
}

// schedulerLoop runs debounce windows and dispatches finished batches.
func (s *Service) schedulerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case task := <-s.runq:
			if batch := task.run(); len(batch) > 0 {
				s.onDelayedChange(task, batch)
			}
		}
	}
}

// onDelayedChange delivers a finished batch to every handler registered for
// the task's directory. Each handler sees its own filtered view; a handler
// that filters everything out is not invoked at all.
func (s *Service) onDelayedChange(task *debounceTask, batch Batch) {
	set, ok := s.handlers.Load(task.dir)
	if !ok {
		// Last handler removed while the window was pending.
		return
	}

	for _, handler := range set.snapshot() {
		s.dispatch(handler, batch)
	}
}

// dispatch filters the batch for one handler and invokes it. Failures are
// isolated: a panic in Test or Accept is recovered and logged so the other
// handlers in the batch and the scheduler goroutine keep running.
func (s *Service) dispatch(handler Handler, batch Batch) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked",
				"key", handler.Key(),
				"panic", r,
			)
		}
	}()

	filtered := make(Batch, 0, len(batch))
	for _, ev := range batch {
		if handler.Test(ev.Path, ev.Kind) {
			filtered = append(filtered, ev)
		}
	}
	if len(filtered) == 0 {
		return
	}

	s.logger.Debug("dispatching batch", "key", handler.Key(), "events", len(filtered))
	handler.Accept(filtered)
}

// enqueue hands a fired task to the scheduler goroutine. Called from timer
// goroutines; blocks if the scheduler is behind, which applies natural
// backpressure instead of dropping windows.
func (s *Service) enqueue(task *debounceTask) {
	select {
	case s.runq <- task:
	case <-s.done:
	}
}

// dropTask removes a retired task from the task table, tolerating the entry
// having already been replaced by a newer task for the same directory.
func (s *Service) dropTask(task *debounceTask) {
	s.tasks.CompareAndDelete(task.dir, task)
}

// liveTasks reports the number of live debounce tasks, for tests and stats.
func (s *Service) liveTasks() int {
	return s.tasks.Len()
}
