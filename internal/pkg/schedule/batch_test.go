package schedule

import (
	"testing"
	"time"
)

func draftAt(day time.Time, start, end string) Draft {
	return Draft{
		Subject:   "Physics",
		ClassName: "Grade 11",
		Section:   "B",
		Date:      day,
		StartTime: start,
		EndTime:   end,
	}
}

func TestCrossCheckDetectsSameDayOverlaps(t *testing.T) {
	day := date(2026, 3, 2)
	instructor := int64(5)

	a := draftAt(day, "09:00", "10:00")
	a.InstructorID = &instructor
	a.Room = "Lab 1"

	b := draftAt(day, "09:30", "10:30")
	b.InstructorID = &instructor
	b.Room = "Lab 1"

	conflicts, err := CrossCheck([]Draft{a, b})
	if err != nil {
		t.Fatalf("CrossCheck failed: %v", err)
	}

	if conflicts[0] != nil {
		t.Fatalf("first draft should own no conflicts, got %v", conflicts[0])
	}
	if len(conflicts[1]) != 3 {
		t.Fatalf("got %d conflict entries, want 3 dimensions", len(conflicts[1]))
	}

	dims := map[BatchDimension]bool{}
	for _, c := range conflicts[1] {
		dims[c.Dimension] = true
		if c.WithIndex != 0 {
			t.Errorf("conflict attributed to index %d, want 0", c.WithIndex)
		}
	}
	for _, want := range []BatchDimension{BatchInstructor, BatchRoom, BatchStudents} {
		if !dims[want] {
			t.Errorf("missing dimension %s", want)
		}
	}
}

func TestCrossCheckSkipsDifferentDays(t *testing.T) {
	a := draftAt(date(2026, 3, 2), "09:00", "10:00")
	b := draftAt(date(2026, 3, 3), "09:00", "10:00")

	conflicts, err := CrossCheck([]Draft{a, b})
	if err != nil {
		t.Fatalf("CrossCheck failed: %v", err)
	}
	if conflicts[0] != nil || conflicts[1] != nil {
		t.Fatal("drafts on different days must not conflict")
	}
}

func TestCrossCheckSkipsTouchingRanges(t *testing.T) {
	day := date(2026, 3, 2)
	a := draftAt(day, "09:00", "10:00")
	b := draftAt(day, "10:00", "11:00")

	conflicts, err := CrossCheck([]Draft{a, b})
	if err != nil {
		t.Fatalf("CrossCheck failed: %v", err)
	}
	if conflicts[1] != nil {
		t.Fatal("back-to-back ranges must not conflict")
	}
}

func TestCrossCheckDimensionIsolation(t *testing.T) {
	day := date(2026, 3, 2)

	// Different cohorts, different rooms, no instructors: nothing shared.
	a := draftAt(day, "09:00", "10:00")
	a.Room = "Lab 1"
	b := draftAt(day, "09:00", "10:00")
	b.ClassName = "Grade 12"
	b.Room = "Lab 2"

	conflicts, err := CrossCheck([]Draft{a, b})
	if err != nil {
		t.Fatalf("CrossCheck failed: %v", err)
	}
	if conflicts[1] != nil {
		t.Fatalf("overlap without shared resources should be clean, got %v", conflicts[1])
	}

	// Empty rooms never collide with each other.
	c := draftAt(day, "09:00", "10:00")
	c.ClassName = "Grade 9"
	d := draftAt(day, "09:00", "10:00")
	d.ClassName = "Grade 8"
	conflicts, err = CrossCheck([]Draft{c, d})
	if err != nil {
		t.Fatalf("CrossCheck failed: %v", err)
	}
	if conflicts[1] != nil {
		t.Fatal("empty room values must not be treated as the same room")
	}
}

func TestCrossCheckAttributesToEarlierDraftsOnly(t *testing.T) {
	day := date(2026, 3, 2)
	a := draftAt(day, "09:00", "10:00")
	b := draftAt(day, "09:00", "10:00")
	c := draftAt(day, "09:00", "10:00")

	conflicts, err := CrossCheck([]Draft{a, b, c})
	if err != nil {
		t.Fatalf("CrossCheck failed: %v", err)
	}

	if conflicts[0] != nil {
		t.Fatal("first draft must own nothing")
	}
	if len(conflicts[1]) != 1 || conflicts[1][0].WithIndex != 0 {
		t.Fatalf("second draft conflicts = %v, want one entry against index 0", conflicts[1])
	}
	if len(conflicts[2]) != 2 {
		t.Fatalf("third draft should conflict with both earlier drafts, got %v", conflicts[2])
	}
}
