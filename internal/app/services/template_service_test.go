package services

import (
	"context"
	"errors"
	"testing"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/notification"
)

func newTemplateHarness() (*TemplateService, *fakeTemplateStore, *fakeSessionStore, *captureNotifier) {
	templates := newFakeTemplateStore()
	sessions := newFakeSessionStore()
	notifier := &captureNotifier{}
	conflicts := NewConflictService(sessions, &fakeExamStore{})
	svc := NewTemplateService(templates, sessions, conflicts, notifier)
	return svc, templates, sessions, notifier
}

func templateRequest() *dto.CreateTemplateRequest {
	start := "2026-03-02" // a Monday
	end := "2026-03-15"
	return &dto.CreateTemplateRequest{
		Subject:   "Mathematics",
		ClassName: "Grade 10",
		Section:   "A",
		Room:      "Lab 1",
		Pattern:   "WEEKLY",
		Weekdays:  []int{1, 3},
		StartTime: "09:00",
		EndTime:   "10:30",
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestCreateTemplate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if created.Pattern != models.PatternWeekly {
		t.Fatalf("pattern = %s, want WEEKLY", created.Pattern)
	}
	if created.DurationMinutes != 90 {
		t.Fatalf("duration = %d, want 90", created.DurationMinutes)
	}
	if created.CreatedBy != 1 {
		t.Fatalf("createdBy = %d, want 1", created.CreatedBy)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTemplateHarness()

	t.Run("weekly without weekdays", func(t *testing.T) {
		req := templateRequest()
		req.Weekdays = nil
		if _, err := svc.CreateTemplate(ctx, req, 1); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("error = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("no window at all", func(t *testing.T) {
		req := templateRequest()
		req.StartDate = nil
		req.EndDate = nil
		req.NumberOfWeeks = 0
		if _, err := svc.CreateTemplate(ctx, req, 1); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("error = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("daily drops weekdays", func(t *testing.T) {
		req := templateRequest()
		req.Pattern = "DAILY"
		created, err := svc.CreateTemplate(ctx, req, 1)
		if err != nil {
			t.Fatalf("CreateTemplate failed: %v", err)
		}
		if len(created.Weekdays) != 0 {
			t.Fatalf("weekdays = %v, want empty for DAILY", created.Weekdays)
		}
	})
}

func TestUpdateTemplatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	req := templateRequest()
	req.Subject = "Advanced Mathematics"
	updated, err := svc.UpdateTemplate(ctx, created.ID, req)
	if err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}
	if updated.ID != created.ID || updated.CreatedBy != created.CreatedBy {
		t.Fatalf("identity changed: (%d, %d) vs (%d, %d)", updated.ID, updated.CreatedBy, created.ID, created.CreatedBy)
	}
	if updated.Subject != "Advanced Mathematics" {
		t.Fatalf("subject = %s", updated.Subject)
	}
}

func TestPreviewTemplatePersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	summary, err := svc.PreviewTemplate(ctx, created.ID, &dto.TemplateRangeRequest{}, 1)
	if err != nil {
		t.Fatalf("PreviewTemplate failed: %v", err)
	}
	if summary.TotalDrafts != 4 {
		t.Fatalf("totalDrafts = %d, want 4 (two weeks of Mon+Wed)", summary.TotalDrafts)
	}
	if summary.HasConflicts {
		t.Fatalf("empty calendar should preview clean, got %+v", summary)
	}
	for _, draft := range summary.Drafts {
		// Clean drafts carry empty lists, not nulls, on the wire.
		if draft.BatchConflicts == nil {
			t.Fatalf("draft %d has nil batch conflicts", draft.Index)
		}
	}

	if len(sessions.sessions) != 0 {
		t.Fatalf("preview persisted %d sessions", len(sessions.sessions))
	}
}

func TestApplyTemplateCommitsBatch(t *testing.T) {
	ctx := context.Background()
	svc, templates, sessions, notifier := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	result, err := svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{}, 1)
	if err != nil {
		t.Fatalf("ApplyTemplate failed: %v", err)
	}
	if result.Created != 4 || result.Skipped != 0 {
		t.Fatalf("created/skipped = %d/%d, want 4/0", result.Created, result.Skipped)
	}

	for _, s := range result.Sessions {
		if s.Status != models.SessionScheduled {
			t.Fatalf("generated session status = %s, want SCHEDULED", s.Status)
		}
		if s.TemplateID == nil || *s.TemplateID != created.ID {
			t.Fatalf("generated session templateID = %v, want %d", s.TemplateID, created.ID)
		}
	}

	if got := len(templates.appended[created.ID]); got != 4 {
		t.Fatalf("provenance recorded %d ids, want 4", got)
	}
	if len(sessions.sessions) != 4 {
		t.Fatalf("store holds %d sessions, want 4", len(sessions.sessions))
	}

	kinds := notifier.kinds()
	if len(kinds) != 4 {
		t.Fatalf("got %d events, want 4", len(kinds))
	}
	for _, k := range kinds {
		if k != notification.EventCreated {
			t.Fatalf("event = %s, want created", k)
		}
	}
}

func TestApplyTemplateRejectsWholeBatchOnConflict(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	// Occupy the room on the first generated Monday.
	blocker := activeSession(0, day(2026, 3, 2), "09:00", "10:00")
	blocker.ClassName = "Grade 12"
	blocker.Room = "Lab 1"
	sessions.add(blocker)

	_, err = svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{}, 1)
	if !errors.Is(err, apperrors.ErrScheduleConflict) {
		t.Fatalf("error = %v, want ErrScheduleConflict", err)
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("rejected apply persisted sessions: store holds %d", len(sessions.sessions))
	}
}

func TestApplyTemplateSkipConflictsKeepsSurvivors(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	blocker := activeSession(0, day(2026, 3, 2), "09:00", "10:00")
	blocker.ClassName = "Grade 12"
	blocker.Room = "Lab 1"
	sessions.add(blocker)

	result, err := svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{SkipConflicts: true}, 1)
	if err != nil {
		t.Fatalf("ApplyTemplate failed: %v", err)
	}
	if result.Created != 3 || result.Skipped != 1 {
		t.Fatalf("created/skipped = %d/%d, want 3/1", result.Created, result.Skipped)
	}
	if len(result.SkippedDrafts) != 1 {
		t.Fatalf("skippedDrafts = %d, want 1", len(result.SkippedDrafts))
	}
	if !result.SkippedDrafts[0].Date.Equal(day(2026, 3, 2)) {
		t.Fatalf("skipped wrong draft: %v", result.SkippedDrafts[0].Date)
	}
}

func TestApplyTemplateAllConflictingRejectsEvenWithSkip(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newTemplateHarness()

	req := templateRequest()
	// A one-day window produces a single draft.
	start := "2026-03-02"
	req.StartDate = &start
	req.EndDate = &start
	created, err := svc.CreateTemplate(ctx, req, 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	blocker := activeSession(0, day(2026, 3, 2), "09:00", "10:00")
	blocker.ClassName = "Grade 12"
	blocker.Room = "Lab 1"
	sessions.add(blocker)

	_, err = svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{SkipConflicts: true}, 1)
	if !errors.Is(err, apperrors.ErrScheduleConflict) {
		t.Fatalf("error = %v, want ErrScheduleConflict when nothing survives", err)
	}
}

func TestApplyTemplateEmptyRange(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	// A Saturday-only window matches neither Monday nor Wednesday.
	start := "2026-03-07"
	_, err = svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{StartDate: &start, EndDate: &start}, 1)
	if !errors.Is(err, apperrors.ErrEmptyBatch) {
		t.Fatalf("error = %v, want ErrEmptyBatch", err)
	}
}

func TestApplyTemplateSurvivesProvenanceFailure(t *testing.T) {
	ctx := context.Background()
	templates := newFakeTemplateStore()
	templates.appendErr = errors.New("disk on fire")
	sessions := newFakeSessionStore()
	conflicts := NewConflictService(sessions, &fakeExamStore{})
	svc := NewTemplateService(templates, sessions, conflicts, &captureNotifier{})

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	result, err := svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{}, 1)
	if err != nil {
		t.Fatalf("ApplyTemplate should tolerate provenance failures: %v", err)
	}
	if result.Created != 4 {
		t.Fatalf("created = %d, want 4", result.Created)
	}
}

func TestDeleteTemplateKeepsGeneratedSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newTemplateHarness()

	created, err := svc.CreateTemplate(ctx, templateRequest(), 1)
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if _, err := svc.ApplyTemplate(ctx, created.ID, &dto.ApplyTemplateRequest{}, 1); err != nil {
		t.Fatalf("ApplyTemplate failed: %v", err)
	}

	if err := svc.DeleteTemplate(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if _, err := svc.GetTemplateByID(ctx, created.ID); !errors.Is(err, apperrors.ErrTemplateNotFound) {
		t.Fatalf("error = %v, want ErrTemplateNotFound", err)
	}
	if len(sessions.sessions) != 4 {
		t.Fatalf("generated sessions must survive template deletion, have %d", len(sessions.sessions))
	}
}
