package sklog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.skia.org/webshot/go/sklog/sklogimpl"
)

type line struct {
	severity sklogimpl.Severity
	msg      string
}

type recordingLogger struct {
	lines []line
}

func (r *recordingLogger) Log(_ int, severity sklogimpl.Severity, format string, args ...interface{}) {
	msg := fmt.Sprint(args...)
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	r.lines = append(r.lines, line{severity: severity, msg: msg})
}

func (r *recordingLogger) Flush() {}

func TestLevels_DispatchToLogger(t *testing.T) {
	r := &recordingLogger{}
	SetLogger(r)
	defer SetLogger(&recordingLogger{})

	Debugf("d %d", 1)
	Info("i")
	Warningf("w %s", "x")
	ErrorfWithDepth(0, "e %v", true)

	assert.Equal(t, []line{
		{severity: sklogimpl.Debug, msg: "d 1"},
		{severity: sklogimpl.Info, msg: "i"},
		{severity: sklogimpl.Warning, msg: "w x"},
		{severity: sklogimpl.Error, msg: "e true"},
	}, r.lines)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "WARNING", sklogimpl.Warning.String())
	assert.Equal(t, "Severity(9)", sklogimpl.Severity(9).String())
}
