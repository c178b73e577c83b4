// Package skerr provides functions to wrap errors with the location where they
// were created and with additional context, while keeping the original error
// reachable through errors.Is and errors.As.
package skerr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// StackTrace identifies a single call site.
type StackTrace struct {
	File string
	Line int
}

// String returns the call site as "file.go:123".
func (st StackTrace) String() string {
	return fmt.Sprintf("%s:%d", st.File, st.Line)
}

// ErrorWithContext is an error that carries the call stack where it was first
// wrapped and any context messages added along the way.
type ErrorWithContext struct {
	// Wrapped is the original error. Never nil.
	Wrapped error
	// CallStack holds the call sites, innermost first.
	CallStack []StackTrace
	// Context holds messages added by Wrapf, innermost first.
	Context []string
}

// Error implements the error interface.
func (err *ErrorWithContext) Error() string {
	var out strings.Builder
	for i := len(err.Context) - 1; i >= 0; i-- {
		out.WriteString(err.Context[i])
		out.WriteString(": ")
	}
	out.WriteString(err.Wrapped.Error())
	out.WriteString(". At")
	for _, st := range err.CallStack {
		out.WriteString(" ")
		out.WriteString(st.String())
	}
	return out.String()
}

// Unwrap returns the wrapped error so that errors.Is and errors.As can see it.
func (err *ErrorWithContext) Unwrap() error {
	return err.Wrapped
}

// CallStack returns the call sites of the caller of the function that called
// CallStack, at most height entries deep, skipping startAt frames.
func CallStack(height, startAt int) []StackTrace {
	pcs := make([]uintptr, height)
	// Skip runtime.Callers and CallStack itself.
	n := runtime.Callers(startAt+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	rv := make([]StackTrace, 0, n)
	for {
		frame, more := frames.Next()
		if frame.File != "" {
			rv = append(rv, StackTrace{
				File: filepath.Base(frame.File),
				Line: frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return rv
}

// Wrap adds the caller's location to err. If err already carries a call stack
// it is returned unchanged. Returns nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var withContext *ErrorWithContext
	if errors.As(err, &withContext) {
		return err
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(5, 1),
	}
}

// Wrapf adds the caller's location to err and prefixes its message with the
// formatted context. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	var withContext *ErrorWithContext
	if errors.As(err, &withContext) && withContext == err {
		return &ErrorWithContext{
			Wrapped:   withContext.Wrapped,
			CallStack: withContext.CallStack,
			Context:   append(append([]string{}, withContext.Context...), msg),
		}
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(5, 1),
		Context:   []string{msg},
	}
}

// Fmt is like fmt.Errorf, but adds the caller's location.
func Fmt(format string, args ...interface{}) error {
	return &ErrorWithContext{
		Wrapped:   fmt.Errorf(format, args...),
		CallStack: CallStack(5, 1),
	}
}

// Unwrap returns the innermost error that is not an *ErrorWithContext.
func Unwrap(err error) error {
	for {
		withContext, ok := err.(*ErrorWithContext)
		if !ok {
			return err
		}
		err = withContext.Wrapped
	}
}
