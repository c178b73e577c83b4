package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"go.skia.org/webshot/go/sklog"
	"go.skia.org/webshot/go/util"
)

type contextKey string

const (
	stdoutKey  contextKey = "stdout"
	stderrKey  contextKey = "stderr"
	exitKey    contextKey = "exit"
	verboseKey contextKey = "verbose"
)

// exitFn terminates the process, or the current goroutine in tests.
type exitFn func(code int)

// executionContext returns a context carrying where output goes and how to exit.
func executionContext(ctx context.Context, stdout, stderr io.Writer, exit exitFn) context.Context {
	ctx = context.WithValue(ctx, stdoutKey, stdout)
	ctx = context.WithValue(ctx, stderrKey, stderr)
	return context.WithValue(ctx, exitKey, exit)
}

func withVerbose(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, verboseKey, verbose)
}

func isVerbose(ctx context.Context) bool {
	v, _ := ctx.Value(verboseKey).(bool)
	return v
}

func stdout(ctx context.Context) io.Writer {
	return ctx.Value(stdoutKey).(io.Writer)
}

func stderr(ctx context.Context) io.Writer {
	return ctx.Value(stderrKey).(io.Writer)
}

// exitProcess flushes the logs and exits with the given code.
func exitProcess(ctx context.Context, code int) {
	sklog.Flush()
	ctx.Value(exitKey).(exitFn)(code)
}

// logInfof writes to the command's stdout.
func logInfof(ctx context.Context, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(stdout(ctx), format, args...)
}

// logVerbose writes msg to stdout, but only with --verbose.
func logVerbose(ctx context.Context, msg string) {
	if isVerbose(ctx) {
		_, _ = fmt.Fprint(stdout(ctx), msg)
	}
}

// logErrf writes to the command's stderr.
func logErrf(ctx context.Context, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(stderr(ctx), format, args...)
}

// logErrfAndExit writes to stderr and exits with exitError.
func logErrfAndExit(ctx context.Context, format string, args ...interface{}) {
	logErrf(ctx, format, args...)
	exitProcess(ctx, exitError)
}

// ifErrLogExit exits with exitError if err is not nil.
func ifErrLogExit(ctx context.Context, err error) {
	if err != nil {
		logErrfAndExit(ctx, "Error: %s\n", err)
	}
}

// logFlags writes the flags the user set, with --verbose.
func logFlags(ctx context.Context, flags *pflag.FlagSet) {
	if !isVerbose(ctx) {
		return
	}
	flags.Visit(func(f *pflag.Flag) {
		logVerbose(ctx, fmt.Sprintf("--%s=%s\n", f.Name, f.Value))
	})
}

// writeOutput calls fn with a writer for path, or for stdout if path is empty.
// Files are replaced atomically.
func writeOutput(ctx context.Context, path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(stdout(ctx))
	}
	return util.WithWriteFile(path, fn)
}
