package services

import (
	"context"
	"testing"
	"time"

	"github.com/arda/classplanner/internal/app/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeSession(id int64, date time.Time, start, end string) models.ClassSession {
	return models.ClassSession{
		ID:          id,
		Subject:     "Mathematics",
		ClassName:   "Grade 10",
		Section:     "A",
		SessionDate: date,
		StartTime:   start,
		EndTime:     end,
		Status:      models.SessionScheduled,
	}
}

func TestCheckAllConflictsInstructorDimension(t *testing.T) {
	ctx := context.Background()
	instructor := int64(9)
	monday := day(2026, 3, 2)

	store := newFakeSessionStore()
	existing := activeSession(1, monday, "09:00", "10:00")
	existing.InstructorID = &instructor
	store.add(existing)

	svc := NewConflictService(store, &fakeExamStore{})

	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		InstructorID: &instructor,
		ClassName:    "Grade 12",
		Date:         monday,
		StartTime:    "09:30",
		EndTime:      "10:30",
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if !report.HasConflicts {
		t.Fatal("expected an instructor conflict")
	}
	if len(report.Instructor) != 1 {
		t.Fatalf("instructor entries = %d, want 1", len(report.Instructor))
	}
	if report.Instructor[0].ID != 1 {
		t.Fatalf("conflicting session id = %d, want 1", report.Instructor[0].ID)
	}
	if len(report.Students) != 0 {
		t.Fatal("different cohort must not produce a student conflict")
	}
}

func TestCheckAllConflictsSkipsAbsentResources(t *testing.T) {
	ctx := context.Background()
	monday := day(2026, 3, 2)

	store := newFakeSessionStore()
	store.add(activeSession(1, monday, "09:00", "10:00"))

	svc := NewConflictService(store, &fakeExamStore{})

	// No instructor, no room: only the cohort dimension applies, and it
	// belongs to a different cohort.
	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		ClassName: "Grade 11",
		Date:      monday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if report.HasConflicts {
		t.Fatalf("expected a clean report, got %+v", report)
	}
}

func TestCheckAllConflictsRoomIncludesExams(t *testing.T) {
	ctx := context.Background()
	monday := day(2026, 3, 2)

	exams := &fakeExamStore{exams: []models.Exam{{
		ID:        3,
		Subject:   "Physics",
		ClassName: "Grade 11",
		ExamDate:  monday,
		StartTime: "10:00",
		EndTime:   "12:00",
		Room:      "Hall 1",
		Status:    models.ExamScheduled,
	}}}

	svc := NewConflictService(newFakeSessionStore(), exams)

	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		Room:      "Hall 1",
		ClassName: "Grade 10",
		Date:      monday,
		StartTime: "11:00",
		EndTime:   "12:30",
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if len(report.Room) != 1 {
		t.Fatalf("room entries = %d, want 1 exam conflict", len(report.Room))
	}
	if report.Room[0].Type != "exam" {
		t.Fatalf("entry type = %s, want exam", report.Room[0].Type)
	}
}

func TestCheckAllConflictsStudentsIncludeExams(t *testing.T) {
	ctx := context.Background()
	monday := day(2026, 3, 2)

	exams := &fakeExamStore{exams: []models.Exam{{
		ID:        4,
		Subject:   "Chemistry",
		ClassName: "Grade 10",
		Section:   "A",
		ExamDate:  monday,
		StartTime: "09:00",
		EndTime:   "11:00",
		Status:    models.ExamScheduled,
	}}}

	svc := NewConflictService(newFakeSessionStore(), exams)

	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		ClassName: "Grade 10",
		Section:   "A",
		Date:      monday,
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if len(report.Students) != 1 {
		t.Fatalf("student entries = %d, want 1", len(report.Students))
	}
}

func TestCheckAllConflictsCancelledSessionsFreeTheSlot(t *testing.T) {
	ctx := context.Background()
	monday := day(2026, 3, 2)

	store := newFakeSessionStore()
	cancelled := activeSession(1, monday, "09:00", "10:00")
	cancelled.Status = models.SessionCancelled
	cancelled.Room = "Lab 2"
	store.add(cancelled)

	svc := NewConflictService(store, &fakeExamStore{})

	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		Room:      "Lab 2",
		ClassName: "Grade 10",
		Section:   "A",
		Date:      monday,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if report.HasConflicts {
		t.Fatal("cancelled sessions must not hold their resources")
	}
}

func TestCheckAllConflictsExcludesSelf(t *testing.T) {
	ctx := context.Background()
	monday := day(2026, 3, 2)

	store := newFakeSessionStore()
	existing := activeSession(1, monday, "09:00", "10:00")
	existing.Room = "Lab 1"
	store.add(existing)

	svc := NewConflictService(store, &fakeExamStore{})

	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		Room:             "Lab 1",
		ClassName:        "Grade 10",
		Section:          "A",
		Date:             monday,
		StartTime:        "09:00",
		EndTime:          "10:00",
		ExcludeSessionID: 1,
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if report.HasConflicts {
		t.Fatal("a session must not conflict with itself during updates")
	}
}

func TestCheckAllConflictsTouchingRangesAreClean(t *testing.T) {
	ctx := context.Background()
	monday := day(2026, 3, 2)

	store := newFakeSessionStore()
	existing := activeSession(1, monday, "09:00", "10:00")
	existing.Room = "Lab 1"
	store.add(existing)

	svc := NewConflictService(store, &fakeExamStore{})

	report, err := svc.CheckAllConflicts(ctx, ConflictProposal{
		Room:      "Lab 1",
		ClassName: "Grade 12",
		Date:      monday,
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	if err != nil {
		t.Fatalf("CheckAllConflicts failed: %v", err)
	}
	if report.HasConflicts {
		t.Fatal("back-to-back bookings of a room must not conflict")
	}
}
