package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exitCodeRecorder stands in for os.Exit. It records the code and ends the
// calling goroutine, so it must be used with runUntilExit.
type exitCodeRecorder struct {
	wasCalled bool
	exitCode  int
}

func (e *exitCodeRecorder) ExitWithCode(code int) {
	e.wasCalled = true
	e.exitCode = code
	runtime.Goexit()
}

// AssertWasCalledWithCode fails the test if exit was not called with code.
func (e *exitCodeRecorder) AssertWasCalledWithCode(t *testing.T, code int, msgAndArgs ...interface{}) {
	require.True(t, e.wasCalled, msgAndArgs...)
	assert.Equal(t, code, e.exitCode, msgAndArgs...)
}

// testContext returns a context whose stdout, stderr and exit are captured.
func testContext(verbose bool) (context.Context, *bytes.Buffer, *bytes.Buffer, *exitCodeRecorder) {
	color.NoColor = true
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	exit := &exitCodeRecorder{}
	ctx := executionContext(context.Background(), out, errOut, exit.ExitWithCode)
	return withVerbose(ctx, verbose), out, errOut, exit
}

// runUntilExit runs f on its own goroutine and waits for it to return or to
// call exitProcess.
func runUntilExit(t *testing.T, f func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	<-done
}

func TestIfErrLogExit_NilError_DoesNotExit(t *testing.T) {
	ctx, out, errOut, exit := testContext(false)
	runUntilExit(t, func() {
		ifErrLogExit(ctx, nil)
	})
	assert.False(t, exit.wasCalled)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestLogVerbose_OnlyWhenVerbose(t *testing.T) {
	ctx, out, _, _ := testContext(false)
	logVerbose(ctx, "hidden\n")
	assert.Empty(t, out.String())

	ctx, out, _, _ = testContext(true)
	logVerbose(ctx, "shown\n")
	assert.Equal(t, "shown\n", out.String())
}

func TestWriteOutput_File_ReplacesContents(t *testing.T) {
	ctx, out, _, _ := testContext(false)
	p := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, writeOutput(ctx, p, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Empty(t, out.String())
}
