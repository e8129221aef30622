// Package reload contains the built-in consumers of the monitor service: the
// script reloader and the model reloader. Each implements monitor.Handler and
// reacts to change batches for its directory.
package reload

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/emberforge/assetmon/internal/monitor"
)

// Script is one loaded server script. Instances are immutable; a reload
// replaces the entry rather than mutating it.
type Script struct {
	Name     string
	Path     string
	Source   []byte
	Version  uint64
	LoadedAt time.Time
}

// ScriptManager keeps the live set of server scripts for one directory and
// reloads them when the monitor reports changes.
//
// Accept only forwards the batch to the manager's worker goroutine; the file
// reads happen off the scheduler goroutine, per the Handler contract.
type ScriptManager struct {
	logger *slog.Logger
	dir    string
	key    string

	mu      sync.RWMutex
	scripts map[string]*Script // script name -> latest loaded version

	jobs      chan monitor.Batch
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewScriptManager creates a script manager for dir and starts its reload
// worker. Close must be called to release the worker.
func NewScriptManager(logger *slog.Logger, dir string) *ScriptManager {
	dir = filepath.Clean(dir)
	m := &ScriptManager{
		logger:  logger,
		dir:     dir,
		key:     "script-reloader:" + dir,
		scripts: make(map[string]*Script),
		jobs:    make(chan monitor.Batch, 16),
		done:    make(chan struct{}),
	}

	m.wg.Add(1)
	go m.worker()

	return m
}

// Preload loads every script currently present in the directory. Called once
// at startup so the server has a full script set before the first change.
func (m *ScriptManager) Preload() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isScript(entry.Name()) {
			continue
		}
		m.load(filepath.Join(m.dir, entry.Name()))
	}
	m.logger.Info("scripts preloaded", "dir", m.dir, "count", m.Len())
	return nil
}

// Test reports whether the path names a script file. Runs on the scheduler
// goroutine; extension check only, no I/O.
func (m *ScriptManager) Test(path string, _ monitor.EventKind) bool {
	return isScript(path)
}

// Accept queues the batch for the reload worker.
func (m *ScriptManager) Accept(batch monitor.Batch) {
	select {
	case m.jobs <- batch:
	case <-m.done:
	}
}

// Key returns the stable registration identity for this manager.
func (m *ScriptManager) Key() string { return m.key }

// Get returns the latest loaded version of the named script.
func (m *ScriptManager) Get(name string) (*Script, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	script, ok := m.scripts[name]
	return script, ok
}

// Len returns the number of loaded scripts.
func (m *ScriptManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scripts)
}

// Close stops the reload worker. Queued batches are dropped.
func (m *ScriptManager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}

func (m *ScriptManager) worker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case batch := <-m.jobs:
			m.apply(batch)
		}
	}
}

func (m *ScriptManager) apply(batch monitor.Batch) {
	for _, ev := range batch {
		switch ev.Kind {
		case monitor.KindDeleted:
			m.evict(ev.Path)
		default:
			m.load(ev.Path)
		}
	}
}

func (m *ScriptManager) load(path string) {
	source, err := os.ReadFile(path) //#nosec G304 -- Paths come from the watched scripts directory
	if err != nil {
		// File may have vanished between the event and the read; the
		// delete event will follow.
		m.logger.Warn("failed to read script", "path", path, "error", err)
		return
	}

	name := scriptName(path)

	m.mu.Lock()
	var version uint64 = 1
	if prev, ok := m.scripts[name]; ok {
		version = prev.Version + 1
	}
	m.scripts[name] = &Script{
		Name:     name,
		Path:     path,
		Source:   source,
		Version:  version,
		LoadedAt: time.Now(),
	}
	m.mu.Unlock()

	m.logger.Info("script reloaded", "name", name, "version", version, "bytes", len(source))
}

func (m *ScriptManager) evict(path string) {
	name := scriptName(path)

	m.mu.Lock()
	_, ok := m.scripts[name]
	delete(m.scripts, name)
	m.mu.Unlock()

	if ok {
		m.logger.Info("script unloaded", "name", name)
	}
}

func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua", ".js":
		return true
	default:
		return false
	}
}

func scriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
