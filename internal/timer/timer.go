// Package timer computes remaining countdown time from a fixed anchor
// timestamp. It keeps no state of its own: every call recomputes from the
// anchor, so values stay correct across process restarts and reconnects.
package timer

import (
	"fmt"
	"time"
)

// Clock abstracts wall-clock reads so controllers can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Remaining returns the whole seconds left on a countdown anchored at start
// with the given limit. The result is clamped to [0, limitSec]: it never goes
// negative after expiry, and never exceeds the limit when the anchor sits in
// the future (clock skew).
func Remaining(start time.Time, limitSec int, now time.Time) int {
	elapsed := int(now.Sub(start) / time.Second)
	remaining := limitSec - elapsed
	if remaining < 0 {
		return 0
	}
	if remaining > limitSec {
		return limitSec
	}
	return remaining
}

// FormatClock renders seconds as m:ss for display.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
