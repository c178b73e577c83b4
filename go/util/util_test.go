package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithWriteFile_Success_ContentsWrittenNoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	require.NoError(t, WithWriteFile(target, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}))

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWithWriteFile_Success_FileIsWorldReadable(t *testing.T) {
	target := filepath.Join(t.TempDir(), "diff.png")
	require.NoError(t, WithWriteFile(target, func(w io.Writer) error {
		_, err := w.Write([]byte("x"))
		return err
	}))

	fi, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), fi.Mode().Perm())
}

func TestWithWriteFile_WriteFnFails_TargetNotCreated(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	boom := errors.New("boom")

	err := WithWriteFile(target, func(w io.Writer) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithWriteFile_MissingDirectory_ReturnsError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt")
	err := WithWriteFile(target, func(w io.Writer) error { return nil })
	assert.Error(t, err)
}

func TestWithReadFile_ReadsContents(t *testing.T) {
	target := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(target, []byte("abc"), 0644))

	var got []byte
	require.NoError(t, WithReadFile(target, func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	}))
	assert.Equal(t, "abc", string(got))
}
