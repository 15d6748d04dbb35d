package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadTimeFormat indicates a wall-clock string that is not "HH:MM".
// Time strings reaching this package are a caller contract; malformed
// input fails fast instead of being silently skipped.
var ErrBadTimeFormat = errors.New("time must be in HH:MM format")

// ParseClock converts a "HH:MM" wall-clock string to minutes since
// midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, clock)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, clock)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, clock)
	}

	return hours*60 + minutes, nil
}

// MinutesBetween returns the duration in minutes between two same-day
// wall-clock strings. The end must be strictly after the start.
func MinutesBetween(start, end string) (int, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if endMin <= startMin {
		return 0, fmt.Errorf("end time %q must be after start time %q", end, start)
	}
	return endMin - startMin, nil
}

// RangesOverlap reports whether two same-day time ranges intersect.
// Ranges are half-open: touching endpoints (one ends exactly when the
// other starts) do not overlap.
func RangesOverlap(startA, endA, startB, endB string) (bool, error) {
	aStart, err := ParseClock(startA)
	if err != nil {
		return false, err
	}
	aEnd, err := ParseClock(endA)
	if err != nil {
		return false, err
	}
	bStart, err := ParseClock(startB)
	if err != nil {
		return false, err
	}
	bEnd, err := ParseClock(endB)
	if err != nil {
		return false, err
	}

	return aStart < bEnd && bStart < aEnd, nil
}

// SameDay reports whether two timestamps fall on the same calendar day,
// ignoring the time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateOnly truncates a timestamp to midnight UTC so calendar days
// compare cleanly regardless of how the caller built the time value.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
