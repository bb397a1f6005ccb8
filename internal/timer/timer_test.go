package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		limitSec int
		want     int
	}{
		{"full limit at start", start, 60, 60},
		{"half elapsed", start.Add(30 * time.Second), 60, 30},
		{"exactly at limit", start.Add(60 * time.Second), 60, 0},
		{"past limit clamps to zero", start.Add(5 * time.Minute), 60, 0},
		{"sub-second elapsed floors", start.Add(900 * time.Millisecond), 60, 60},
		{"anchor in the future clamps to limit", start.Add(-10 * time.Second), 60, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(start, tt.limitSec, tt.now))
		})
	}
}

func TestRemainingIdempotent(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(17 * time.Second)

	first := Remaining(start, 120, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Remaining(start, 120, now))
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "0:09", FormatClock(9))
	assert.Equal(t, "1:00", FormatClock(60))
	assert.Equal(t, "2:05", FormatClock(125))
	assert.Equal(t, "0:00", FormatClock(-3))
}
