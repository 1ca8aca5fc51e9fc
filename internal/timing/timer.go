// Package timing measures the wall-clock time spent in a single DATA/PROC
// step and renders it as the two "real time"/"cpu time" log lines of
// spec.md §4.9.
package timing

import (
	"fmt"
	"time"
)

// Timer captures start/stop wall time for one step. No process CPU clock is
// read: the "cpu time" line reports the same wall-clock duration as the
// "real time" line, which avoids a platform-specific rusage syscall.
type Timer struct {
	start time.Time
	end   time.Time
}

// Start begins timing.
func (t *Timer) Start() { t.start = time.Now() }

// Stop ends timing.
func (t *Timer) Stop() { t.end = time.Now() }

// Real returns elapsed wall-clock time.
func (t *Timer) Real() time.Duration { return t.end.Sub(t.start) }

// Lines renders the two log lines spec.md §4.9 mandates.
func (t *Timer) Lines() []string {
	secs := t.Real().Seconds()
	return []string{
		fmt.Sprintf("real time  %.2f seconds", secs),
		fmt.Sprintf("cpu time   %.2f seconds", secs),
	}
}
