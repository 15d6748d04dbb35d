package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"1230", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.clock)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %d", tt.clock, got)
			} else if !errors.Is(err, ErrBadTimeFormat) {
				t.Errorf("ParseClock(%q) error = %v, want ErrBadTimeFormat", tt.clock, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.clock, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.clock, got, tt.want)
		}
	}
}

func TestMinutesBetween(t *testing.T) {
	got, err := MinutesBetween("09:00", "10:30")
	if err != nil {
		t.Fatalf("MinutesBetween failed: %v", err)
	}
	if got != 90 {
		t.Fatalf("MinutesBetween = %d, want 90", got)
	}

	if _, err := MinutesBetween("10:00", "10:00"); err == nil {
		t.Fatal("expected error for zero-length range")
	}
	if _, err := MinutesBetween("11:00", "10:00"); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if _, err := MinutesBetween("bad", "10:00"); !errors.Is(err, ErrBadTimeFormat) {
		t.Fatalf("error = %v, want ErrBadTimeFormat", err)
	}
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name                           string
		startA, endA, startB, endB     string
		want                           bool
	}{
		{"identical ranges", "09:00", "10:00", "09:00", "10:00", true},
		{"partial overlap", "09:00", "10:00", "09:30", "10:30", true},
		{"containment", "09:00", "12:00", "10:00", "11:00", true},
		{"touching endpoints", "09:00", "10:00", "10:00", "11:00", false},
		{"touching endpoints reversed", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "08:00", "09:00", "13:00", "14:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RangesOverlap(tt.startA, tt.endA, tt.startB, tt.endB)
			if err != nil {
				t.Fatalf("RangesOverlap failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("RangesOverlap = %v, want %v", got, tt.want)
			}

			// Overlap is symmetric in its two ranges.
			mirrored, err := RangesOverlap(tt.startB, tt.endB, tt.startA, tt.endA)
			if err != nil {
				t.Fatalf("mirrored RangesOverlap failed: %v", err)
			}
			if mirrored != got {
				t.Fatalf("RangesOverlap not symmetric: %v vs %v", got, mirrored)
			}
		})
	}

	if _, err := RangesOverlap("09:00", "10:00", "half past", "11:00"); !errors.Is(err, ErrBadTimeFormat) {
		t.Fatalf("error = %v, want ErrBadTimeFormat", err)
	}
}

func TestSameDayAndDateOnly(t *testing.T) {
	morning := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Fatal("SameDay should match timestamps on the same date")
	}
	if SameDay(evening, nextDay) {
		t.Fatal("SameDay should not match different dates")
	}

	if got := DateOnly(evening); !got.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("DateOnly = %v, want midnight UTC", got)
	}
}
