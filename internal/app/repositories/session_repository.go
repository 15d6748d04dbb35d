package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/helpers"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// sessionColumns is the canonical select list for class_sessions rows.
var sessionColumns = []string{
	"cs.id", "cs.subject", "cs.class_name", "cs.section",
	"cs.session_date", "cs.start_time", "cs.end_time", "cs.duration_minutes",
	"cs.instructor_id", "cs.room", "cs.is_online", "cs.meeting_link", "cs.capacity",
	"cs.status", "cs.cancel_reason", "cs.rescheduled_from", "cs.rescheduled_to",
	"cs.reminder_sent", "cs.materials", "cs.template_id", "cs.created_by",
	"cs.created_at", "cs.updated_at",
	"COALESCE(u.full_name, '') AS instructor_name",
}

// SessionRepository handles class session database operations
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans one row produced by sessionColumns.
func scanSession(row rowScanner) (*models.ClassSession, error) {
	var s models.ClassSession
	var section, room, meetingLink, cancelReason sql.NullString
	var instructorID, templateID sql.NullInt64
	var rescheduledFrom, rescheduledTo sql.NullTime
	var materials []byte

	err := row.Scan(
		&s.ID, &s.Subject, &s.ClassName, &section,
		&s.SessionDate, &s.StartTime, &s.EndTime, &s.DurationMinutes,
		&instructorID, &room, &s.IsOnline, &meetingLink, &s.Capacity,
		&s.Status, &cancelReason, &rescheduledFrom, &rescheduledTo,
		&s.ReminderSent, &materials, &templateID, &s.CreatedBy,
		&s.CreatedAt, &s.UpdatedAt,
		&s.InstructorName,
	)
	if err != nil {
		return nil, err
	}

	s.Section = section.String
	s.Room = room.String
	s.MeetingLink = meetingLink.String
	s.CancelReason = cancelReason.String
	if instructorID.Valid {
		s.InstructorID = &instructorID.Int64
	}
	if templateID.Valid {
		s.TemplateID = &templateID.Int64
	}
	if rescheduledFrom.Valid {
		t := rescheduledFrom.Time
		s.RescheduledFrom = &t
	}
	if rescheduledTo.Valid {
		t := rescheduledTo.Time
		s.RescheduledTo = &t
	}
	if len(materials) > 0 {
		if err := json.Unmarshal(materials, &s.Materials); err != nil {
			return nil, fmt.Errorf("failed to decode session materials: %w", err)
		}
	}

	return &s, nil
}

// sessionInsertValues maps a session onto its insert columns.
func sessionInsertValues(s *models.ClassSession) (map[string]interface{}, error) {
	materials, err := json.Marshal(s.Materials)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session materials: %w", err)
	}
	if s.Materials == nil {
		materials = []byte("[]")
	}

	return map[string]interface{}{
		"subject":          s.Subject,
		"class_name":       s.ClassName,
		"section":          helpers.GetContentNullString(s.Section),
		"session_date":     s.SessionDate,
		"start_time":       s.StartTime,
		"end_time":         s.EndTime,
		"duration_minutes": s.DurationMinutes,
		"instructor_id":    helpers.GetNullInt64Ptr(s.InstructorID),
		"room":             helpers.GetContentNullString(s.Room),
		"is_online":        s.IsOnline,
		"meeting_link":     helpers.GetContentNullString(s.MeetingLink),
		"capacity":         s.Capacity,
		"status":           string(s.Status),
		"materials":        materials,
		"template_id":      helpers.GetNullInt64Ptr(s.TemplateID),
		"created_by":       s.CreatedBy,
	}, nil
}

// CreateSession inserts a new class session and returns its id
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.ClassSession) (int64, error) {
	values, err := sessionInsertValues(session)
	if err != nil {
		return 0, err
	}

	sqlQuery, args, err := r.sb.Insert("class_sessions").
		SetMap(values).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return 0, fmt.Errorf("failed to build create session query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlQuery, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create session query")
		return 0, fmt.Errorf("error inserting class session: %w", err)
	}

	logger.Info().Int64("sessionID", id).Str("subject", session.Subject).Msg("Class session created")
	return id, nil
}

// CreateSessionBatch inserts all sessions inside one transaction and
// returns their ids in input order. A failed insert rolls back the
// whole batch so a template application never half-persists.
func (r *SessionRepository) CreateSessionBatch(ctx context.Context, sessions []*models.ClassSession) ([]int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		values, err := sessionInsertValues(session)
		if err != nil {
			return nil, err
		}

		sqlQuery, args, err := r.sb.Insert("class_sessions").
			SetMap(values).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building batch insert session SQL")
			return nil, fmt.Errorf("failed to build batch insert query: %w", err)
		}

		var id int64
		if err := tx.QueryRow(ctx, sqlQuery, args...).Scan(&id); err != nil {
			logger.Error().Err(err).Msg("Error executing batch insert session query")
			return nil, fmt.Errorf("error inserting session batch: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session batch: %w", err)
	}

	logger.Info().Int("count", len(ids)).Msg("Session batch persisted")
	return ids, nil
}

// GetSessionByID retrieves a session by its id, including the
// instructor's display name.
func (r *SessionRepository) GetSessionByID(ctx context.Context, id int64) (*models.ClassSession, error) {
	sqlQuery, args, err := r.sb.Select(sessionColumns...).
		From("class_sessions cs").
		LeftJoin("users u ON cs.instructor_id = u.id").
		Where(squirrel.Eq{"cs.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session by ID SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	session, err := scanSession(r.db.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Int64("sessionID", id).Msg("Session not found by ID")
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error scanning session row by ID")
		return nil, fmt.Errorf("error querying session ID=%d: %w", id, err)
	}

	return session, nil
}

// SessionFilter narrows ListSessions results.
type SessionFilter struct {
	ClassName    string
	Section      string
	InstructorID *int64
	Status       string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// ListSessions retrieves sessions with filtering and pagination,
// ordered by date then start time.
func (r *SessionRepository) ListSessions(ctx context.Context, filter SessionFilter, page, size int) ([]models.ClassSession, int64, error) {
	where := squirrel.And{}
	if filter.ClassName != "" {
		where = append(where, squirrel.Eq{"cs.class_name": filter.ClassName})
	}
	if filter.Section != "" {
		where = append(where, squirrel.Eq{"cs.section": filter.Section})
	}
	if filter.InstructorID != nil {
		where = append(where, squirrel.Eq{"cs.instructor_id": *filter.InstructorID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"cs.status": filter.Status})
	}
	if filter.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"cs.session_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"cs.session_date": *filter.DateTo})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("class_sessions cs").
		Where(where).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count sessions SQL")
		return nil, 0, fmt.Errorf("failed to build count sessions query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count sessions query")
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	if total == 0 {
		return []models.ClassSession{}, 0, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sqlQuery, args, err := r.sb.Select(sessionColumns...).
		From("class_sessions cs").
		LeftJoin("users u ON cs.instructor_id = u.id").
		Where(where).
		OrderBy("cs.session_date ASC", "cs.start_time ASC", "cs.id ASC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list sessions SQL")
		return nil, 0, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list sessions query")
		return nil, 0, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// UpdateSession persists the mutable fields of a session.
func (r *SessionRepository) UpdateSession(ctx context.Context, session *models.ClassSession) error {
	materials, err := json.Marshal(session.Materials)
	if err != nil {
		return fmt.Errorf("failed to encode session materials: %w", err)
	}
	if session.Materials == nil {
		materials = []byte("[]")
	}

	sqlQuery, args, err := r.sb.Update("class_sessions").
		SetMap(map[string]interface{}{
			"subject":          session.Subject,
			"session_date":     session.SessionDate,
			"start_time":       session.StartTime,
			"end_time":         session.EndTime,
			"duration_minutes": session.DurationMinutes,
			"instructor_id":    helpers.GetNullInt64Ptr(session.InstructorID),
			"room":             helpers.GetContentNullString(session.Room),
			"is_online":        session.IsOnline,
			"meeting_link":     helpers.GetContentNullString(session.MeetingLink),
			"capacity":         session.Capacity,
			"status":           string(session.Status),
			"cancel_reason":    helpers.GetContentNullString(session.CancelReason),
			"rescheduled_from": session.RescheduledFrom,
			"rescheduled_to":   session.RescheduledTo,
			"reminder_sent":    session.ReminderSent,
			"materials":        materials,
			"updated_at":       time.Now(),
		}).
		Where(squirrel.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", session.ID).Msg("Error building update session SQL")
		return fmt.Errorf("failed to build update session query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", session.ID).Msg("Error executing update session query")
		return fmt.Errorf("error updating session ID=%d: %w", session.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("sessionID", session.ID).Msg("Attempted to update non-existent session")
		return apperrors.ErrSessionNotFound
	}

	logger.Info().Int64("sessionID", session.ID).Str("status", string(session.Status)).Msg("Session updated")
	return nil
}

// DeleteSession removes a session unconditionally. This is the
// administrative escape hatch; lifecycle guards do not apply.
func (r *SessionRepository) DeleteSession(ctx context.Context, id int64) error {
	sqlQuery, args, err := r.sb.Delete("class_sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error building delete session SQL")
		return fmt.Errorf("failed to build delete session query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error executing delete session query")
		return fmt.Errorf("error deleting session ID=%d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("sessionID", id).Msg("Attempted to delete non-existent session")
		return apperrors.ErrSessionNotFound
	}

	logger.Info().Int64("sessionID", id).Msg("Session deleted")
	return nil
}

// activeStatuses are the statuses that still occupy resources.
var activeStatuses = []string{
	string(models.SessionScheduled),
	string(models.SessionOngoing),
	string(models.SessionRescheduled),
}

// FindActiveByInstructorAndDate returns active sessions for an
// instructor on a calendar day, optionally excluding one session id
// (for update-in-place checks).
func (r *SessionRepository) FindActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time, excludeID int64) ([]models.ClassSession, error) {
	where := squirrel.And{
		squirrel.Eq{"cs.instructor_id": instructorID},
		squirrel.Eq{"cs.session_date": date},
		squirrel.Eq{"cs.status": activeStatuses},
	}
	return r.findActive(ctx, where, excludeID)
}

// FindActiveByRoomAndDate returns active sessions occupying a room on a
// calendar day.
func (r *SessionRepository) FindActiveByRoomAndDate(ctx context.Context, room string, date time.Time, excludeID int64) ([]models.ClassSession, error) {
	where := squirrel.And{
		squirrel.Eq{"cs.room": room},
		squirrel.Eq{"cs.session_date": date},
		squirrel.Eq{"cs.status": activeStatuses},
	}
	return r.findActive(ctx, where, excludeID)
}

// FindActiveByCohortAndDate returns active sessions booked for a
// student cohort on a calendar day.
func (r *SessionRepository) FindActiveByCohortAndDate(ctx context.Context, className, section string, date time.Time, excludeID int64) ([]models.ClassSession, error) {
	where := squirrel.And{
		squirrel.Eq{"cs.class_name": className},
		squirrel.Eq{"cs.session_date": date},
		squirrel.Eq{"cs.status": activeStatuses},
	}
	if section == "" {
		where = append(where, squirrel.Or{squirrel.Eq{"cs.section": nil}, squirrel.Eq{"cs.section": ""}})
	} else {
		where = append(where, squirrel.Eq{"cs.section": section})
	}
	return r.findActive(ctx, where, excludeID)
}

func (r *SessionRepository) findActive(ctx context.Context, where squirrel.And, excludeID int64) ([]models.ClassSession, error) {
	if excludeID > 0 {
		where = append(where, squirrel.NotEq{"cs.id": excludeID})
	}

	sqlQuery, args, err := r.sb.Select(sessionColumns...).
		From("class_sessions cs").
		LeftJoin("users u ON cs.instructor_id = u.id").
		Where(where).
		OrderBy("cs.start_time ASC", "cs.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building find active sessions SQL")
		return nil, fmt.Errorf("failed to build find active sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing find active sessions query")
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]models.ClassSession, error) {
	var sessions []models.ClassSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning session row")
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating session rows")
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}
