// Package sklogimpl holds the Logger interface that backs the package-level
// functions in sklog, so that implementations can live in their own packages
// without import cycles.
package sklogimpl

import (
	"fmt"
	"os"
	"sync"
)

// Severity is the level of a log line.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Fatal
)

// String returns the name of the severity.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Logger is implemented by the log backends.
type Logger interface {
	// Log writes a single log line. If format is empty the args are formatted
	// with fmt.Sprint, otherwise with fmt.Sprintf.
	Log(depth int, severity Severity, format string, args ...interface{})

	// Flush writes out any buffered log lines.
	Flush()
}

var (
	mtx    sync.RWMutex
	logger Logger
)

// SetLogger replaces the current logger.
func SetLogger(l Logger) {
	mtx.Lock()
	defer mtx.Unlock()
	logger = l
}

// Log dispatches to the current logger. Fatal lines terminate the process
// after the logger has been flushed.
func Log(depth int, severity Severity, format string, args ...interface{}) {
	mtx.RLock()
	l := logger
	mtx.RUnlock()
	if l == nil {
		return
	}
	l.Log(depth+1, severity, format, args...)
	if severity == Fatal {
		l.Flush()
		os.Exit(255)
	}
}

// Flush flushes the current logger.
func Flush() {
	mtx.RLock()
	defer mtx.RUnlock()
	if logger != nil {
		logger.Flush()
	}
}
