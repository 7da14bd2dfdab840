package navigation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := map[string]FileType{
		"app.log":       TypeLog,
		"APP.LOG":       TypeLog,
		"app.log.1":     TypeLog,
		"app.log.2.gz":  TypeArchive,
		"trace.zst":     TypeArchive,
		"worker.out":    TypeLog,
		"notes.txt":     TypeText,
		"settings.yaml": TypeText,
		"core":          TypeUnknown,
		"image.png":     TypeUnknown,
	}

	for name, want := range tests {
		assert.Equal(t, want, classify(name), name)
	}
}

func TestNewEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))
	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	entry, ok := NewEntry(path)
	require.True(t, ok)
	assert.Equal(t, path, entry.Path())
	assert.Equal(t, "server.log", entry.Name())
	assert.False(t, entry.IsDirectory())
	assert.Equal(t, TypeLog, entry.Type())
	assert.EqualValues(t, 6, entry.Size())
	assert.True(t, entry.ModTime().Equal(mtime))
	assert.Equal(t, mtime.UnixMilli(), entry.ModificationTime())

	dirEntry, ok := NewEntry(dir)
	require.True(t, ok)
	assert.True(t, dirEntry.IsDirectory())
	assert.Equal(t, TypeDirectory, dirEntry.Type())
	assert.Zero(t, dirEntry.Size())

	_, ok = NewEntry(filepath.Join(dir, "missing.log"))
	assert.False(t, ok)
}

func TestSnapshotRootName(t *testing.T) {
	entry, ok := NewEntry("/")
	require.True(t, ok)
	assert.Equal(t, "/", entry.Name())
}
