package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/toolasset/internal/watcher"
)

func startWatcher(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Path:        path,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  debug: false\n"), 0o644))

	onChange := startWatcher(t, path)

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("actor: user%d\n", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	otherPath := filepath.Join(dir, "config.yaml.bak")
	require.NoError(t, os.WriteFile(path, []byte("actor: a\n"), 0o644))
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0o644))

	onChange := startWatcher(t, path)

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0o644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actor: a\n"), 0o644))

	onChange := startWatcher(t, path)

	tmp := filepath.Join(dir, ".config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("actor: b\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for a file renamed over the watched path")
	}
}

func TestWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actor: a\n"), 0o644))

	w, err := watcher.New(watcher.DefaultConfig(path))
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Stop should not hang or panic
	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "config.yaml")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	_, err = w.Start()
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/etc/toolasset/config.yaml")

	assert.Equal(t, "/etc/toolasset/config.yaml", cfg.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
