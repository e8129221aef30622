package reload

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberforge/assetmon/internal/monitor"
)

func newTestScriptManager(t *testing.T) (*ScriptManager, string) {
	t.Helper()
	dir := t.TempDir()
	m := NewScriptManager(slog.New(slog.NewTextHandler(os.Stdout, nil)), dir)
	t.Cleanup(m.Close)
	return m, dir
}

func TestScriptManager_Preload(t *testing.T) {
	m, dir := newTestScriptManager(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "spawn.lua"), []byte("-- spawn"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a script"), 0o644))

	require.NoError(t, m.Preload())
	assert.Equal(t, 1, m.Len())

	script, ok := m.Get("spawn")
	require.True(t, ok)
	assert.Equal(t, []byte("-- spawn"), script.Source)
	assert.Equal(t, uint64(1), script.Version)
}

func TestScriptManager_Filter(t *testing.T) {
	m, _ := newTestScriptManager(t)

	assert.True(t, m.Test("/srv/scripts/spawn.lua", monitor.KindModified))
	assert.True(t, m.Test("/srv/scripts/ui.js", monitor.KindCreated))
	assert.False(t, m.Test("/srv/scripts/zombie.json", monitor.KindModified))
	assert.False(t, m.Test("/srv/scripts/readme.md", monitor.KindModified))
}

func TestScriptManager_ReloadBumpsVersion(t *testing.T) {
	m, dir := newTestScriptManager(t)

	path := filepath.Join(dir, "spawn.lua")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	m.Accept(monitor.Batch{{Path: path, Kind: monitor.KindCreated, Seq: 1}})
	require.Eventually(t, func() bool {
		s, ok := m.Get("spawn")
		return ok && s.Version == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	m.Accept(monitor.Batch{{Path: path, Kind: monitor.KindModified, Seq: 2}})

	require.Eventually(t, func() bool {
		s, ok := m.Get("spawn")
		return ok && s.Version == 2 && string(s.Source) == "v2"
	}, time.Second, 10*time.Millisecond)
}

func TestScriptManager_DeleteEvicts(t *testing.T) {
	m, dir := newTestScriptManager(t)

	path := filepath.Join(dir, "spawn.lua")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	require.NoError(t, m.Preload())
	require.Equal(t, 1, m.Len())

	m.Accept(monitor.Batch{{Path: path, Kind: monitor.KindDeleted, Seq: 1}})

	require.Eventually(t, func() bool {
		return m.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestScriptManager_MissingFileTolerated(t *testing.T) {
	m, dir := newTestScriptManager(t)

	// The file vanished between the event and the read; nothing loads and
	// nothing breaks.
	m.Accept(monitor.Batch{{Path: filepath.Join(dir, "gone.lua"), Kind: monitor.KindCreated, Seq: 1}})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, m.Len())
}
