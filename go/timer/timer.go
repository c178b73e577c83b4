// timer makes timing operations easier.
package timer

import (
	"time"

	"github.com/hako/durafmt"

	"go.skia.org/webshot/go/sklog"
)

// Timer is for timing events. When finished the duration is reported
// via sklog.
//
// The standard way to use Timer is at the top of the func you
// want to measure:
//
//	defer timer.New("batch of 12 comparisons").Stop()
type Timer struct {
	Begin time.Time
	Name  string

	now func() time.Time
}

// New starts a Timer with the given name.
func New(name string) *Timer {
	return newWithClock(name, time.Now)
}

func newWithClock(name string, now func() time.Time) *Timer {
	return &Timer{
		Begin: now(),
		Name:  name,
		now:   now,
	}
}

// Stop logs and returns the time elapsed since New.
func (t *Timer) Stop() time.Duration {
	elapsed := t.now().Sub(t.Begin)
	sklog.Infof("%s took %s", t.Name, humanDuration(elapsed))
	return elapsed
}

// humanDuration spells out d to the millisecond, e.g. "1 minute 30 seconds".
func humanDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	if d <= 0 {
		return "<1ms"
	}
	return durafmt.Parse(d).String()
}
