// Package sklog is the logging front end used throughout webshot. Lines go to
// stderr until SetLogger installs something else.
package sklog

import (
	"os"

	"go.skia.org/webshot/go/sklog/sklogimpl"
	"go.skia.org/webshot/go/sklog/stdlogging"
)

func init() {
	sklogimpl.SetLogger(stdlogging.New(os.Stderr))
}

// SetLogger replaces the logger used by all the functions in this package.
func SetLogger(l sklogimpl.Logger) {
	sklogimpl.SetLogger(l)
}

// Debugf logs at debug level. The stderr logger drops these unless it was
// created with debug output enabled.
func Debugf(format string, v ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Debug, format, v...)
}

func Info(msg ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Info, "", msg...)
}

func Infof(format string, v ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Info, format, v...)
}

func Warningf(format string, v ...interface{}) {
	sklogimpl.Log(1, sklogimpl.Warning, format, v...)
}

// ErrorfWithDepth logs at error level, attributing the line to the caller
// depth frames above the one calling it.
func ErrorfWithDepth(depth int, format string, v ...interface{}) {
	sklogimpl.Log(1+depth, sklogimpl.Error, format, v...)
}

// Flush writes out anything the logger buffered.
func Flush() {
	sklogimpl.Flush()
}
