package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/app/repositories"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/helpers"
	"github.com/arda/classplanner/internal/pkg/logger"
	"github.com/arda/classplanner/internal/pkg/notification"
	"github.com/arda/classplanner/internal/pkg/schedule"
)

// SessionStore is the session persistence surface the lifecycle service
// depends on.
type SessionStore interface {
	SessionConflictStore
	CreateSession(ctx context.Context, session *models.ClassSession) (int64, error)
	GetSessionByID(ctx context.Context, id int64) (*models.ClassSession, error)
	ListSessions(ctx context.Context, filter repositories.SessionFilter, page, size int) ([]models.ClassSession, int64, error)
	UpdateSession(ctx context.Context, session *models.ClassSession) error
	DeleteSession(ctx context.Context, id int64) error
}

// SessionService owns the session lifecycle: creation, updates, the
// status state machine and material attachments. Every mutation that
// students or instructors should hear about is pushed through the
// notifier; notification failures are logged and never surfaced.
type SessionService struct {
	sessionStore    SessionStore
	conflictService *ConflictService
	notifier        notification.Notifier
}

// NewSessionService creates a new session service instance
func NewSessionService(sessionStore SessionStore, conflictService *ConflictService, notifier notification.Notifier) *SessionService {
	return &SessionService{
		sessionStore:    sessionStore,
		conflictService: conflictService,
		notifier:        notifier,
	}
}

// CreateSession validates and persists a new session. With checkConflicts
// set, a slot that collides with existing bookings is rejected with the
// full conflict report; without it the session is created regardless.
func (s *SessionService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest, createdBy int64, checkConflicts bool) (*models.ClassSession, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}

	duration, err := schedule.MinutesBetween(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if req.IsOnline && req.MeetingLink == "" {
		return nil, apperrors.NewValidationError("online sessions require a meeting link")
	}

	if checkConflicts {
		report, err := s.conflictService.CheckAllConflicts(ctx, ConflictProposal{
			InstructorID: req.InstructorID,
			Room:         req.Room,
			ClassName:    req.ClassName,
			Section:      req.Section,
			Date:         date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
		})
		if err != nil {
			return nil, err
		}
		if report.HasConflicts {
			return nil, apperrors.NewConflictError("the requested slot conflicts with existing bookings", report)
		}
	}

	session := &models.ClassSession{
		Subject:         req.Subject,
		ClassName:       req.ClassName,
		Section:         req.Section,
		SessionDate:     date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: duration,
		InstructorID:    req.InstructorID,
		Room:            req.Room,
		IsOnline:        req.IsOnline,
		MeetingLink:     req.MeetingLink,
		Capacity:        req.Capacity,
		Status:          models.SessionScheduled,
		CreatedBy:       createdBy,
	}

	id, err := s.sessionStore.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	created, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading created session: %w", err)
	}

	s.notify(created, notification.EventCreated)
	return created, nil
}

// GetSessionByID retrieves a single session.
func (s *SessionService) GetSessionByID(ctx context.Context, id int64) (*models.ClassSession, error) {
	return s.sessionStore.GetSessionByID(ctx, id)
}

// ListSessions retrieves sessions matching the filter, paginated.
func (s *SessionService) ListSessions(ctx context.Context, req *dto.SessionFilterRequest, page, size int) ([]models.ClassSession, int64, error) {
	dateFrom, err := helpers.ParseDatePtr(strPtrOrNil(req.DateFrom))
	if err != nil {
		return nil, 0, apperrors.NewValidationError("dateFrom must be in YYYY-MM-DD format")
	}
	dateTo, err := helpers.ParseDatePtr(strPtrOrNil(req.DateTo))
	if err != nil {
		return nil, 0, apperrors.NewValidationError("dateTo must be in YYYY-MM-DD format")
	}

	filter := repositories.SessionFilter{
		ClassName:    req.ClassName,
		Section:      req.Section,
		InstructorID: req.InstructorID,
		Status:       req.Status,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
	}
	return s.sessionStore.ListSessions(ctx, filter, page, size)
}

// CheckConflicts runs the conflict detector for an arbitrary proposed
// slot without persisting anything.
func (s *SessionService) CheckConflicts(ctx context.Context, req *dto.ConflictCheckRequest) (*dto.ConflictReport, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	if _, err := schedule.MinutesBetween(req.StartTime, req.EndTime); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	return s.conflictService.CheckAllConflicts(ctx, ConflictProposal{
		InstructorID: req.InstructorID,
		Room:         req.Room,
		ClassName:    req.ClassName,
		Section:      req.Section,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
}

// UpdateSession patches a session. Changing any schedule-affecting field
// (date, times, room, instructor) re-runs conflict detection with the
// session itself excluded from the comparison.
func (s *SessionService) UpdateSession(ctx context.Context, id int64, req *dto.UpdateSessionRequest) (*models.ClassSession, error) {
	session, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot modify a %s session", session.Status))
	}

	scheduleChanged := false

	if req.Subject != nil {
		session.Subject = *req.Subject
	}
	if req.Date != nil {
		date, err := helpers.ParseDate(*req.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
		}
		session.SessionDate = date
		scheduleChanged = true
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
		scheduleChanged = true
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
		scheduleChanged = true
	}
	if req.InstructorID != nil {
		session.InstructorID = req.InstructorID
		scheduleChanged = true
	}
	if req.Room != nil {
		session.Room = *req.Room
		scheduleChanged = true
	}
	if req.IsOnline != nil {
		session.IsOnline = *req.IsOnline
	}
	if req.MeetingLink != nil {
		session.MeetingLink = *req.MeetingLink
	}
	if req.Capacity != nil {
		session.Capacity = *req.Capacity
	}

	duration, err := schedule.MinutesBetween(session.StartTime, session.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	session.DurationMinutes = duration

	if session.IsOnline && session.MeetingLink == "" {
		return nil, apperrors.NewValidationError("online sessions require a meeting link")
	}

	if scheduleChanged {
		report, err := s.conflictService.CheckAllConflicts(ctx, ConflictProposal{
			InstructorID:     session.InstructorID,
			Room:             session.Room,
			ClassName:        session.ClassName,
			Section:          session.Section,
			Date:             session.SessionDate,
			StartTime:        session.StartTime,
			EndTime:          session.EndTime,
			ExcludeSessionID: session.ID,
		})
		if err != nil {
			return nil, err
		}
		if report.HasConflicts {
			return nil, apperrors.NewConflictError("the updated slot conflicts with existing bookings", report)
		}
	}

	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error updating session: %w", err)
	}

	return s.sessionStore.GetSessionByID(ctx, id)
}

// RescheduleSession moves a session to a new slot. Only active sessions
// can move; the new slot must be conflict free. The session records
// where it moved from and returns to a schedulable state, so a session
// can be rescheduled more than once.
func (s *SessionService) RescheduleSession(ctx context.Context, id int64, req *dto.RescheduleSessionRequest) (*models.ClassSession, error) {
	session, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.Status.IsActive() {
		return nil, apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot reschedule a %s session", session.Status))
	}

	newDate, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	duration, err := schedule.MinutesBetween(req.StartTime, req.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	room := session.Room
	if req.Room != "" {
		room = req.Room
	}

	report, err := s.conflictService.CheckAllConflicts(ctx, ConflictProposal{
		InstructorID:     session.InstructorID,
		Room:             room,
		ClassName:        session.ClassName,
		Section:          session.Section,
		Date:             newDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		ExcludeSessionID: session.ID,
	})
	if err != nil {
		return nil, err
	}
	if report.HasConflicts {
		return nil, apperrors.NewConflictError("the new slot conflicts with existing bookings", report)
	}

	oldDate := session.SessionDate
	session.RescheduledFrom = &oldDate
	session.RescheduledTo = &newDate
	session.SessionDate = newDate
	session.StartTime = req.StartTime
	session.EndTime = req.EndTime
	session.DurationMinutes = duration
	session.Room = room
	session.Status = models.SessionRescheduled
	// The slot changed, any reminder sent for the old slot is stale.
	session.ReminderSent = false

	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error rescheduling session: %w", err)
	}

	updated, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading rescheduled session: %w", err)
	}

	s.notify(updated, notification.EventRescheduled)
	return updated, nil
}

// CancelSession cancels an active session. Cancellation frees the slot
// and never runs conflict detection.
func (s *SessionService) CancelSession(ctx context.Context, id int64, reason string) (*models.ClassSession, error) {
	session, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot cancel a %s session", session.Status))
	}

	session.Status = models.SessionCancelled
	session.CancelReason = reason

	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error cancelling session: %w", err)
	}

	updated, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading cancelled session: %w", err)
	}

	s.notify(updated, notification.EventCancelled)
	return updated, nil
}

// StartSession marks a session as ongoing. Only scheduled and
// rescheduled sessions can start.
func (s *SessionService) StartSession(ctx context.Context, id int64) (*models.ClassSession, error) {
	return s.transition(ctx, id, models.SessionOngoing, func(status models.SessionStatus) bool {
		return status == models.SessionScheduled || status == models.SessionRescheduled
	})
}

// CompleteSession marks an ongoing session as completed.
func (s *SessionService) CompleteSession(ctx context.Context, id int64) (*models.ClassSession, error) {
	return s.transition(ctx, id, models.SessionCompleted, func(status models.SessionStatus) bool {
		return status == models.SessionOngoing
	})
}

func (s *SessionService) transition(ctx context.Context, id int64, target models.SessionStatus, allowed func(models.SessionStatus) bool) (*models.ClassSession, error) {
	session, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !allowed(session.Status) {
		return nil, apperrors.NewInvalidTransitionError(
			fmt.Sprintf("cannot move a %s session to %s", session.Status, target))
	}

	session.Status = target
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error updating session status: %w", err)
	}

	return s.sessionStore.GetSessionByID(ctx, id)
}

// AddMaterial attaches a study resource to a session. Terminal
// sessions no longer accept materials.
func (s *SessionService) AddMaterial(ctx context.Context, id int64, req *dto.AddMaterialRequest) (*models.ClassSession, error) {
	session, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransitionError(fmt.Sprintf("cannot attach materials to a %s session", session.Status))
	}

	session.Materials = append(session.Materials, models.SessionMaterial{
		Title:   req.Title,
		URL:     req.URL,
		AddedAt: time.Now().UTC(),
	})

	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("error adding session material: %w", err)
	}

	updated, err := s.sessionStore.GetSessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading session: %w", err)
	}

	s.notify(updated, notification.EventMaterialsAdded)
	return updated, nil
}

// DeleteSession removes a session entirely. Deletion is reserved for
// cleanup of mistakes; cancelled is the normal end state.
func (s *SessionService) DeleteSession(ctx context.Context, id int64) error {
	return s.sessionStore.DeleteSession(ctx, id)
}

// notify dispatches a session event. Notification is best effort: a
// panicking or failing notifier must never break the mutation that
// triggered it.
func (s *SessionService) notify(session *models.ClassSession, kind notification.EventKind) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Int64("sessionID", session.ID).
				Str("event", string(kind)).
				Msg("Session notifier panicked")
		}
	}()
	s.notifier.SessionEvent(session, kind)
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
