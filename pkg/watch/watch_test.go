package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.dv.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("[data]\n"), 0o644))

	changed := make(chan string, 4)
	w, err := New(func(p string) { changed <- p }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[data]\na = [1, 2]\n"), 0o644))

	select {
	case got := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		require.Fail(t, "no change reported")
	}
}

func TestWatcher_Remove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.dv.toml")

	w, err := New(func(string) {}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.fs.Close() })
	require.NoError(t, w.Add(path))
	require.NoError(t, w.Add(path))
	assert.Equal(t, 1, w.dirs[dir])

	w.Remove(path)
	assert.Equal(t, 1, w.files[path], "still open elsewhere")
	assert.Equal(t, 1, w.dirs[dir])

	w.Remove(path)
	assert.Empty(t, w.files)
	assert.Empty(t, w.dirs)

	w.Remove(path)
	assert.Empty(t, w.dirs)
}

func TestWatcher_SharedDirectory(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.dv.toml")
	b := filepath.Join(dir, "b.dv.toml")

	w, err := New(func(string) {}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.fs.Close() })
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(b))
	assert.Equal(t, 2, w.dirs[dir])

	w.Remove(a)
	assert.Equal(t, 1, w.dirs[dir])
	assert.Contains(t, w.files, b)
}
