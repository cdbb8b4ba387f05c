package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeOutputs(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	write := func(name string, age time.Duration) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
		return path
	}
	old := write("old.png", 2*time.Hour)
	fresh := write("fresh.png", time.Minute)
	other := write("notes.txt", 2*time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	n, err := PurgeOutputs(dir, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
	assert.DirExists(t, filepath.Join(dir, "sub.png"))
}

func TestPurgeOutputs_MissingDir(t *testing.T) {
	n, err := PurgeOutputs(filepath.Join(t.TempDir(), "missing"), time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStartCleanup(t *testing.T) {
	_, err := StartCleanup(t.TempDir(), time.Hour, "not a spec")
	assert.Error(t, err)

	c, err := StartCleanup(t.TempDir(), time.Hour, "@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
