package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirExists_CreatesNestedDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	abs, err := EnsureDirExists(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	info, err := os.Stat(abs)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Calling it again is fine.
	_, err = EnsureDirExists(dir)
	require.NoError(t, err)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))

	assert.True(t, FileExists(f))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
