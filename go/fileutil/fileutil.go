package fileutil

import (
	"os"
	"path/filepath"

	"go.skia.org/webshot/go/skerr"
)

// EnsureDirExists checks whether the given path to a directory exits and creates it
// if necessary. Returns the absolute path that corresponds to the input path
// and an error indicating a problem.
func EnsureDirExists(dirPath string) (string, error) {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return "", skerr.Wrap(err)
	}
	return absPath, skerr.Wrap(os.MkdirAll(absPath, 0755))
}

// FileExists returns true if path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
