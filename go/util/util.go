package util

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"go.skia.org/webshot/go/skerr"
	"go.skia.org/webshot/go/sklog"
)

// writtenFileMode is the permission given to files written by WithWriteFile.
const writtenFileMode os.FileMode = 0644

// Close wraps an io.Closer and logs an error if one is returned.
func Close(c io.Closer) {
	if err := c.Close(); err != nil {
		// Don't start the stacktrace here, but at the caller's location
		sklog.ErrorfWithDepth(1, "Failed to Close(): %v", err)
	}
}

// Remove removes the specified file and logs an error if one is returned.
func Remove(name string) {
	if err := os.Remove(name); err != nil {
		sklog.ErrorfWithDepth(1, "Failed to Remove(%s): %v", name, err)
	}
}

// WithWriteFile provides an interface for writing to a backing file using a
// temporary intermediate file for more atomicity in case a long-running write
// gets interrupted. The temporary file lives next to the target so the final
// rename never crosses file systems. The file ends up world readable.
func WithWriteFile(file string, writeFn func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".tmp*")
	if err != nil {
		return skerr.Wrapf(err, "creating temporary file for %s", file)
	}
	w := bufio.NewWriter(f)
	if err := writeFn(w); err != nil {
		Close(f)
		Remove(f.Name())
		return err
	}
	if err := w.Flush(); err != nil {
		Close(f)
		Remove(f.Name())
		return skerr.Wrapf(err, "flushing temporary file for %s", file)
	}
	if err := f.Chmod(writtenFileMode); err != nil {
		Close(f)
		Remove(f.Name())
		return skerr.Wrapf(err, "setting permissions on temporary file for %s", file)
	}
	if err := f.Close(); err != nil {
		Remove(f.Name())
		return skerr.Wrapf(err, "closing temporary file for %s", file)
	}
	if err := os.Rename(f.Name(), file); err != nil {
		Remove(f.Name())
		return skerr.Wrapf(err, "renaming temporary file to %s", file)
	}
	return nil
}

// WithReadFile opens the given file for reading and runs the given function.
func WithReadFile(file string, fn func(f io.Reader) error) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer Close(f)
	return fn(bufio.NewReader(f))
}
