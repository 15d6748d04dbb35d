package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/helpers"
	"github.com/arda/classplanner/internal/pkg/logger"
	"github.com/arda/classplanner/internal/pkg/notification"
	"github.com/arda/classplanner/internal/pkg/schedule"
)

// TemplateStore is the template persistence surface the orchestrator
// depends on.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, tmpl *models.SessionTemplate) (int64, error)
	GetTemplateByID(ctx context.Context, id int64) (*models.SessionTemplate, error)
	ListTemplates(ctx context.Context, page, size int) ([]models.SessionTemplate, int64, error)
	UpdateTemplate(ctx context.Context, tmpl *models.SessionTemplate) error
	DeleteTemplate(ctx context.Context, id int64) error
	AppendGeneratedIDs(ctx context.Context, id int64, sessionIDs []int64) error
}

// SessionBatchStore persists a validated batch of sessions atomically:
// either every session in the batch is created or none are.
type SessionBatchStore interface {
	CreateSessionBatch(ctx context.Context, sessions []*models.ClassSession) ([]int64, error)
}

// TemplateService owns recurrence templates and their application:
// expanding a template into dated drafts, validating the batch against
// existing bookings and against itself, and committing the survivors.
type TemplateService struct {
	templateStore   TemplateStore
	batchStore      SessionBatchStore
	conflictService *ConflictService
	notifier        notification.Notifier
}

// NewTemplateService creates a new template service instance
func NewTemplateService(templateStore TemplateStore, batchStore SessionBatchStore, conflictService *ConflictService, notifier notification.Notifier) *TemplateService {
	return &TemplateService{
		templateStore:   templateStore,
		batchStore:      batchStore,
		conflictService: conflictService,
		notifier:        notifier,
	}
}

// CreateTemplate validates and persists a recurrence template.
func (s *TemplateService) CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest, createdBy int64) (*models.SessionTemplate, error) {
	tmpl, err := s.templateFromRequest(req)
	if err != nil {
		return nil, err
	}
	tmpl.CreatedBy = createdBy

	id, err := s.templateStore.CreateTemplate(ctx, tmpl)
	if err != nil {
		return nil, fmt.Errorf("error creating template: %w", err)
	}

	return s.templateStore.GetTemplateByID(ctx, id)
}

// GetTemplateByID retrieves a single template.
func (s *TemplateService) GetTemplateByID(ctx context.Context, id int64) (*models.SessionTemplate, error) {
	return s.templateStore.GetTemplateByID(ctx, id)
}

// ListTemplates retrieves templates, paginated.
func (s *TemplateService) ListTemplates(ctx context.Context, page, size int) ([]models.SessionTemplate, int64, error) {
	return s.templateStore.ListTemplates(ctx, page, size)
}

// UpdateTemplate replaces a template's definition. Sessions already
// generated from it are not touched.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id int64, req *dto.UpdateTemplateRequest) (*models.SessionTemplate, error) {
	existing, err := s.templateStore.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templateFromRequest(req)
	if err != nil {
		return nil, err
	}
	tmpl.ID = existing.ID
	tmpl.CreatedBy = existing.CreatedBy

	if err := s.templateStore.UpdateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("error updating template: %w", err)
	}

	return s.templateStore.GetTemplateByID(ctx, id)
}

// DeleteTemplate removes a template. Previously generated sessions keep
// existing; only the recipe disappears.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id int64) error {
	return s.templateStore.DeleteTemplate(ctx, id)
}

// PreviewTemplate expands the template over the requested range and
// validates every draft without persisting anything. The summary shows
// per draft which conflicts it would hit.
func (s *TemplateService) PreviewTemplate(ctx context.Context, id int64, req *dto.TemplateRangeRequest, requestedBy int64) (*dto.BatchValidationSummary, error) {
	tmpl, err := s.templateStore.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	drafts, err := s.expand(tmpl, req.StartDate, req.EndDate, requestedBy)
	if err != nil {
		return nil, err
	}

	return s.validateBatch(ctx, drafts)
}

// ApplyTemplate expands, validates and commits a template batch. With
// skipConflicts false any conflicting draft rejects the whole batch;
// with true, conflicting drafts are dropped and the remainder persists
// in a single transaction. The template records the generated session
// IDs for provenance.
func (s *TemplateService) ApplyTemplate(ctx context.Context, id int64, req *dto.ApplyTemplateRequest, appliedBy int64) (*dto.ApplyTemplateResult, error) {
	tmpl, err := s.templateStore.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}

	drafts, err := s.expand(tmpl, req.StartDate, req.EndDate, appliedBy)
	if err != nil {
		return nil, err
	}

	summary, err := s.validateBatch(ctx, drafts)
	if err != nil {
		return nil, err
	}

	var clean []schedule.Draft
	var skipped []dto.DraftValidation
	if summary.HasConflicts {
		if !req.SkipConflicts {
			return nil, apperrors.NewConflictError("template application conflicts with existing bookings", summary)
		}
		for i := range drafts {
			if summary.Drafts[i].HasConflicts {
				skipped = append(skipped, summary.Drafts[i])
				continue
			}
			clean = append(clean, drafts[i])
		}
	} else {
		clean = drafts
	}

	if len(clean) == 0 {
		return nil, apperrors.NewConflictError("every generated session conflicts with existing bookings", summary)
	}

	sessions := make([]*models.ClassSession, len(clean))
	for i := range clean {
		sessions[i] = sessionFromDraft(&clean[i])
	}

	ids, err := s.batchStore.CreateSessionBatch(ctx, sessions)
	if err != nil {
		return nil, fmt.Errorf("error persisting template batch: %w", err)
	}

	appliedAt := time.Now().UTC()
	if err := s.templateStore.AppendGeneratedIDs(ctx, tmpl.ID, ids); err != nil {
		// The sessions exist; losing provenance is not worth failing the
		// whole application over.
		logger.Error().
			Err(err).
			Int64("templateID", tmpl.ID).
			Msg("Failed to record generated session IDs on template")
	}

	created := make([]models.ClassSession, len(sessions))
	for i := range sessions {
		sessions[i].ID = ids[i]
		created[i] = *sessions[i]
		s.notify(sessions[i])
	}

	updatedTmpl, err := s.templateStore.GetTemplateByID(ctx, tmpl.ID)
	if err != nil {
		updatedTmpl = tmpl
	}

	return &dto.ApplyTemplateResult{
		Created:         len(created),
		Skipped:         len(skipped),
		Sessions:        created,
		SkippedDrafts:   skipped,
		TemplateID:      tmpl.ID,
		AppliedAt:       appliedAt,
		TemplateSummary: updatedTmpl,
	}, nil
}

// expand turns a template plus an optional explicit range into ordered
// drafts, translating generator errors into input errors.
func (s *TemplateService) expand(tmpl *models.SessionTemplate, startDate, endDate *string, createdBy int64) ([]schedule.Draft, error) {
	rangeStart, err := helpers.ParseDatePtr(startDate)
	if err != nil {
		return nil, apperrors.NewValidationError("startDate must be in YYYY-MM-DD format")
	}
	rangeEnd, err := helpers.ParseDatePtr(endDate)
	if err != nil {
		return nil, apperrors.NewValidationError("endDate must be in YYYY-MM-DD format")
	}

	drafts, err := schedule.GenerateDrafts(tmpl, createdBy, rangeStart, rangeEnd)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if len(drafts) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrEmptyBatch, "the template produces no sessions in the requested range")
	}

	return drafts, nil
}

// validateBatch runs both conflict passes over a generated batch: each
// draft against persisted sessions and exams, and each draft against
// the earlier drafts of its own batch.
func (s *TemplateService) validateBatch(ctx context.Context, drafts []schedule.Draft) (*dto.BatchValidationSummary, error) {
	batchConflicts, err := schedule.CrossCheck(drafts)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	summary := &dto.BatchValidationSummary{
		TotalDrafts: len(drafts),
		Drafts:      make([]dto.DraftValidation, len(drafts)),
	}

	for i := range drafts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		draft := &drafts[i]
		report, err := s.conflictService.CheckAllConflicts(ctx, ConflictProposal{
			InstructorID: draft.InstructorID,
			Room:         draft.Room,
			ClassName:    draft.ClassName,
			Section:      draft.Section,
			Date:         draft.Date,
			StartTime:    draft.StartTime,
			EndTime:      draft.EndTime,
		})
		if err != nil {
			return nil, err
		}

		// Clean drafts keep an empty list so the field renders as []
		// rather than null.
		withinBatch := batchConflicts[i]
		if withinBatch == nil {
			withinBatch = []schedule.BatchConflict{}
		}

		validation := dto.DraftValidation{
			Index:          i,
			Date:           draft.Date,
			StartTime:      draft.StartTime,
			EndTime:        draft.EndTime,
			Conflicts:      report,
			BatchConflicts: withinBatch,
			HasConflicts:   report.HasConflicts || len(withinBatch) > 0,
		}
		if validation.HasConflicts {
			summary.ConflictingCount++
		}
		summary.Drafts[i] = validation
	}

	summary.HasConflicts = summary.ConflictingCount > 0
	return summary, nil
}

// templateFromRequest validates the definition and builds the model.
func (s *TemplateService) templateFromRequest(req *dto.CreateTemplateRequest) (*models.SessionTemplate, error) {
	pattern := models.RecurrencePattern(req.Pattern)
	if pattern.RequiresWeekdays() && len(req.Weekdays) == 0 {
		return nil, apperrors.NewValidationError("weekly and custom patterns require at least one weekday")
	}

	duration, err := schedule.MinutesBetween(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if req.IsOnline && req.MeetingLink == "" {
		return nil, apperrors.NewValidationError("online templates require a meeting link")
	}

	startDate, err := helpers.ParseDatePtr(req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("startDate must be in YYYY-MM-DD format")
	}
	endDate, err := helpers.ParseDatePtr(req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("endDate must be in YYYY-MM-DD format")
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, apperrors.NewValidationError("endDate must not precede startDate")
	}
	if startDate == nil && endDate == nil && req.NumberOfWeeks == 0 {
		return nil, apperrors.NewValidationError("a template needs a start date or a week count to be applicable")
	}

	weekdays := req.Weekdays
	if !pattern.RequiresWeekdays() {
		weekdays = nil
	}

	return &models.SessionTemplate{
		Subject:         req.Subject,
		ClassName:       req.ClassName,
		Section:         req.Section,
		InstructorID:    req.InstructorID,
		Room:            req.Room,
		IsOnline:        req.IsOnline,
		MeetingLink:     req.MeetingLink,
		Capacity:        req.Capacity,
		Pattern:         pattern,
		Weekdays:        weekdays,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: duration,
		StartDate:       startDate,
		EndDate:         endDate,
		NumberOfWeeks:   req.NumberOfWeeks,
	}, nil
}

func sessionFromDraft(draft *schedule.Draft) *models.ClassSession {
	templateID := draft.TemplateID
	return &models.ClassSession{
		Subject:         draft.Subject,
		ClassName:       draft.ClassName,
		Section:         draft.Section,
		SessionDate:     draft.Date,
		StartTime:       draft.StartTime,
		EndTime:         draft.EndTime,
		DurationMinutes: draft.DurationMinutes,
		InstructorID:    draft.InstructorID,
		Room:            draft.Room,
		IsOnline:        draft.IsOnline,
		MeetingLink:     draft.MeetingLink,
		Capacity:        draft.Capacity,
		Status:          models.SessionScheduled,
		TemplateID:      &templateID,
		CreatedBy:       draft.CreatedBy,
	}
}

func (s *TemplateService) notify(session *models.ClassSession) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Int64("sessionID", session.ID).
				Msg("Session notifier panicked")
		}
	}()
	s.notifier.SessionEvent(session, notification.EventCreated)
}
