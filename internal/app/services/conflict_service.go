package services

import (
	"context"
	"fmt"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/pkg/schedule"
)

// SessionConflictStore is the slice of session persistence the conflict
// detector needs: active sessions (scheduled, ongoing or rescheduled)
// that hold a resource on a given day.
type SessionConflictStore interface {
	FindActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time, excludeID int64) ([]models.ClassSession, error)
	FindActiveByRoomAndDate(ctx context.Context, room string, date time.Time, excludeID int64) ([]models.ClassSession, error)
	FindActiveByCohortAndDate(ctx context.Context, className, section string, date time.Time, excludeID int64) ([]models.ClassSession, error)
}

// ExamConflictStore exposes the read-only exam lookups consulted during
// room and student availability checks.
type ExamConflictStore interface {
	FindByRoomAndDate(ctx context.Context, room string, date time.Time) ([]models.Exam, error)
	FindByCohortAndDate(ctx context.Context, className, section string, date time.Time) ([]models.Exam, error)
}

// ConflictProposal is a candidate time slot to test against existing
// bookings. ExcludeSessionID, when positive, removes that session from
// every comparison so an update does not collide with itself.
type ConflictProposal struct {
	InstructorID     *int64
	Room             string
	ClassName        string
	Section          string
	Date             time.Time
	StartTime        string
	EndTime          string
	ExcludeSessionID int64
}

// ConflictService detects double bookings across the three resource
// dimensions: instructor, room and student cohort. Detection is a pure
// read; finding conflicts is a normal outcome reported in the result,
// never an error.
type ConflictService struct {
	sessionStore SessionConflictStore
	examStore    ExamConflictStore
}

// NewConflictService creates a new conflict service instance
func NewConflictService(sessionStore SessionConflictStore, examStore ExamConflictStore) *ConflictService {
	return &ConflictService{
		sessionStore: sessionStore,
		examStore:    examStore,
	}
}

// CheckAllConflicts evaluates every applicable dimension for the
// proposal. A dimension whose resource is absent (no instructor
// assigned, no room booked) is skipped entirely. All dimensions are
// always evaluated so the caller sees the full picture at once.
func (s *ConflictService) CheckAllConflicts(ctx context.Context, proposal ConflictProposal) (*dto.ConflictReport, error) {
	report := dto.NewConflictReport()

	if proposal.InstructorID != nil {
		entries, err := s.checkInstructor(ctx, proposal)
		if err != nil {
			return nil, err
		}
		report.Instructor = entries
	}

	if proposal.Room != "" {
		entries, err := s.checkRoom(ctx, proposal)
		if err != nil {
			return nil, err
		}
		report.Room = entries
	}

	if proposal.ClassName != "" {
		entries, err := s.checkStudents(ctx, proposal)
		if err != nil {
			return nil, err
		}
		report.Students = entries
	}

	report.Recount()
	return report, nil
}

// checkInstructor finds sessions that book the same instructor at an
// overlapping time. Exams do not reference instructors so only sessions
// feed this dimension.
func (s *ConflictService) checkInstructor(ctx context.Context, proposal ConflictProposal) ([]dto.ConflictEntry, error) {
	candidates, err := s.sessionStore.FindActiveByInstructorAndDate(ctx, *proposal.InstructorID, proposal.Date, proposal.ExcludeSessionID)
	if err != nil {
		return nil, fmt.Errorf("error loading instructor sessions: %w", err)
	}
	return s.overlappingSessions(proposal, candidates)
}

// checkRoom finds sessions and scheduled exams that occupy the same
// room at an overlapping time.
func (s *ConflictService) checkRoom(ctx context.Context, proposal ConflictProposal) ([]dto.ConflictEntry, error) {
	candidates, err := s.sessionStore.FindActiveByRoomAndDate(ctx, proposal.Room, proposal.Date, proposal.ExcludeSessionID)
	if err != nil {
		return nil, fmt.Errorf("error loading room sessions: %w", err)
	}
	entries, err := s.overlappingSessions(proposal, candidates)
	if err != nil {
		return nil, err
	}

	exams, err := s.examStore.FindByRoomAndDate(ctx, proposal.Room, proposal.Date)
	if err != nil {
		return nil, fmt.Errorf("error loading room exams: %w", err)
	}
	return s.appendOverlappingExams(proposal, entries, exams)
}

// checkStudents finds sessions and scheduled exams that claim the same
// student cohort at an overlapping time. Cohort identity requires both
// class name and section to match; a session without a section only
// collides with other sectionless records of the same class.
func (s *ConflictService) checkStudents(ctx context.Context, proposal ConflictProposal) ([]dto.ConflictEntry, error) {
	candidates, err := s.sessionStore.FindActiveByCohortAndDate(ctx, proposal.ClassName, proposal.Section, proposal.Date, proposal.ExcludeSessionID)
	if err != nil {
		return nil, fmt.Errorf("error loading cohort sessions: %w", err)
	}
	entries, err := s.overlappingSessions(proposal, candidates)
	if err != nil {
		return nil, err
	}

	exams, err := s.examStore.FindByCohortAndDate(ctx, proposal.ClassName, proposal.Section, proposal.Date)
	if err != nil {
		return nil, fmt.Errorf("error loading cohort exams: %w", err)
	}
	return s.appendOverlappingExams(proposal, entries, exams)
}

func (s *ConflictService) overlappingSessions(proposal ConflictProposal, candidates []models.ClassSession) ([]dto.ConflictEntry, error) {
	entries := []dto.ConflictEntry{}
	for i := range candidates {
		candidate := &candidates[i]
		overlaps, err := schedule.RangesOverlap(proposal.StartTime, proposal.EndTime, candidate.StartTime, candidate.EndTime)
		if err != nil {
			return nil, fmt.Errorf("error comparing session %d: %w", candidate.ID, err)
		}
		if !overlaps {
			continue
		}
		entries = append(entries, dto.ConflictEntry{
			Type:      dto.ConflictRecordSession,
			ID:        candidate.ID,
			Label:     sessionLabel(candidate),
			Date:      candidate.SessionDate,
			StartTime: candidate.StartTime,
			EndTime:   candidate.EndTime,
		})
	}
	return entries, nil
}

func (s *ConflictService) appendOverlappingExams(proposal ConflictProposal, entries []dto.ConflictEntry, exams []models.Exam) ([]dto.ConflictEntry, error) {
	for i := range exams {
		exam := &exams[i]
		overlaps, err := schedule.RangesOverlap(proposal.StartTime, proposal.EndTime, exam.StartTime, exam.EndTime)
		if err != nil {
			return nil, fmt.Errorf("error comparing exam %d: %w", exam.ID, err)
		}
		if !overlaps {
			continue
		}
		entries = append(entries, dto.ConflictEntry{
			Type:      dto.ConflictRecordExam,
			ID:        exam.ID,
			Label:     examLabel(exam),
			Date:      exam.ExamDate,
			StartTime: exam.StartTime,
			EndTime:   exam.EndTime,
		})
	}
	return entries, nil
}

func sessionLabel(session *models.ClassSession) string {
	return fmt.Sprintf("%s (%s)", session.Subject, session.CohortKey())
}

func examLabel(exam *models.Exam) string {
	cohort := exam.ClassName
	if exam.Section != "" {
		cohort += "/" + exam.Section
	}
	return fmt.Sprintf("%s exam (%s)", exam.Subject, cohort)
}
