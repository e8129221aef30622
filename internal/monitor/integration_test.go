package monitor

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive the service through the real fsnotify backend.

func newRealService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	backend, err := NewFsnotifyBackend(logger)
	require.NoError(t, err)

	svc := New(logger, backend, Options{DebounceWindow: 150 * time.Millisecond})
	t.Cleanup(func() { _ = svc.Shutdown() })
	return svc
}

func TestFsnotify_ModelFileScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping fsnotify test in short mode")
	}

	svc := newRealService(t)
	dir := t.TempDir()

	h := newRecordingHandler("models", func(path string, _ EventKind) bool {
		return filepath.Ext(path) == ".json"
	})
	require.NoError(t, svc.MonitorDirectoryFiles(dir, h))

	// Matching file written twice and a non-matching file once, all inside
	// one debounce window.
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte(`{"name":"a"}`), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("ignore me"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte(`{"name":"a","scale":2}`), 0o644))

	batch := h.waitBatch(t, 3*time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, a, batch[0].Path)

	h.expectNoBatch(t, 500*time.Millisecond)
}

func TestFsnotify_Deletion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping fsnotify test in short mode")
	}

	svc := newRealService(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "doomed.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	h := newRecordingHandler("test", nil)
	require.NoError(t, svc.MonitorDirectoryFiles(dir, h))

	require.NoError(t, os.Remove(file))

	batch := h.waitBatch(t, 3*time.Second)
	kind, ok := batch.Kind(file)
	require.True(t, ok)
	assert.Equal(t, KindDeleted, kind)
}

func TestFsnotify_WatchReleasedOnRemoval(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping fsnotify test in short mode")
	}

	svc := newRealService(t)
	dir := t.TempDir()

	h := newRecordingHandler("only", nil)
	require.NoError(t, svc.MonitorDirectoryFiles(dir, h))
	require.NoError(t, svc.RemoveMonitorDirectoryFiles(dir, "only"))

	// After the watch is released, changes no longer produce batches.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.json"), []byte("{}"), 0o644))
	h.expectNoBatch(t, 500*time.Millisecond)
}
