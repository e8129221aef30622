package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fsnotifyBackend implements Backend on top of fsnotify. One goroutine drains
// the fsnotify channels and translates raw operations into PathEvents.
type fsnotifyBackend struct {
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	events chan PathEvent
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// NewFsnotifyBackend creates the production watch backend.
func NewFsnotifyBackend(logger *slog.Logger) (Backend, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	b := &fsnotifyBackend{
		logger:  logger,
		watcher: watcher,
		events:  make(chan PathEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}

	b.wg.Add(1)
	go b.translate()

	return b, nil
}

func (b *fsnotifyBackend) Add(dir string) error {
	if err := b.watcher.Add(dir); err != nil {
		return fmt.Errorf("add watch for %s: %w", dir, err)
	}
	b.logger.Debug("added watch", "dir", dir)
	return nil
}

func (b *fsnotifyBackend) Remove(dir string) error {
	err := b.watcher.Remove(dir)
	if err == nil || errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return nil
	}
	return fmt.Errorf("remove watch for %s: %w", dir, err)
}

func (b *fsnotifyBackend) Events() <-chan PathEvent { return b.events }

func (b *fsnotifyBackend) Errors() <-chan error { return b.errors }

// translate drains fsnotify and re-emits events in the service's vocabulary.
func (b *fsnotifyBackend) translate() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if ev, relevant := translateOp(event); relevant {
				b.emit(ev)
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			select {
			case b.errors <- err:
			case <-b.done:
				return
			}
		}
	}
}

// translateOp maps an fsnotify operation onto an event kind. Chmod-only
// notifications carry no content change and are dropped.
func translateOp(event fsnotify.Event) (PathEvent, bool) {
	var kind EventKind
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = KindCreated
	case event.Op&fsnotify.Write != 0:
		kind = KindModified
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = KindDeleted
	default:
		return PathEvent{}, false
	}
	return PathEvent{Path: event.Name, Kind: kind}, true
}

func (b *fsnotifyBackend) emit(ev PathEvent) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

func (b *fsnotifyBackend) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.closeErr = b.watcher.Close()
		b.wg.Wait()
		close(b.events)
		close(b.errors)
	})
	return b.closeErr
}
