package repositories

import (
	"context"
	"database/sql"
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

// TemplateRepository handles session template database operations
type TemplateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var templateColumns = []string{
	"t.id", "t.subject", "t.class_name", "t.section",
	"t.instructor_id", "t.room", "t.is_online", "t.meeting_link", "t.capacity",
	"t.pattern", "t.weekdays", "t.start_time", "t.end_time", "t.duration_minutes",
	"t.start_date", "t.end_date", "t.number_of_weeks",
	"t.generated_session_ids", "t.last_applied_at", "t.created_by",
	"t.created_at", "t.updated_at",
}

func scanTemplate(row rowScanner) (*models.SessionTemplate, error) {
	var t models.SessionTemplate
	var section, room, meetingLink sql.NullString
	var instructorID sql.NullInt64
	var weekdays []int32
	var startDate, endDate, lastApplied sql.NullTime
	var numberOfWeeks sql.NullInt64
	var generatedIDs []int64

	err := row.Scan(
		&t.ID, &t.Subject, &t.ClassName, &section,
		&instructorID, &room, &t.IsOnline, &meetingLink, &t.Capacity,
		&t.Pattern, &weekdays, &t.StartTime, &t.EndTime, &t.DurationMinutes,
		&startDate, &endDate, &numberOfWeeks,
		&generatedIDs, &lastApplied, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Section = section.String
	t.Room = room.String
	t.MeetingLink = meetingLink.String
	if instructorID.Valid {
		t.InstructorID = &instructorID.Int64
	}
	t.Weekdays = make([]int, 0, len(weekdays))
	for _, d := range weekdays {
		t.Weekdays = append(t.Weekdays, int(d))
	}
	if startDate.Valid {
		d := startDate.Time
		t.StartDate = &d
	}
	if endDate.Valid {
		d := endDate.Time
		t.EndDate = &d
	}
	if numberOfWeeks.Valid {
		t.NumberOfWeeks = int(numberOfWeeks.Int64)
	}
	t.GeneratedSessionIDs = generatedIDs
	if lastApplied.Valid {
		ts := lastApplied.Time
		t.LastAppliedAt = &ts
	}

	return &t, nil
}

func templateValues(t *models.SessionTemplate) map[string]interface{} {
	weekdays := make([]int32, 0, len(t.Weekdays))
	for _, d := range t.Weekdays {
		weekdays = append(weekdays, int32(d))
	}

	var numberOfWeeks interface{}
	if t.NumberOfWeeks > 0 {
		numberOfWeeks = t.NumberOfWeeks
	}

	return map[string]interface{}{
		"subject":          t.Subject,
		"class_name":       t.ClassName,
		"section":          helpers.GetContentNullString(t.Section),
		"instructor_id":    helpers.GetNullInt64Ptr(t.InstructorID),
		"room":             helpers.GetContentNullString(t.Room),
		"is_online":        t.IsOnline,
		"meeting_link":     helpers.GetContentNullString(t.MeetingLink),
		"capacity":         t.Capacity,
		"pattern":          string(t.Pattern),
		"weekdays":         weekdays,
		"start_time":       t.StartTime,
		"end_time":         t.EndTime,
		"duration_minutes": t.DurationMinutes,
		"start_date":       t.StartDate,
		"end_date":         t.EndDate,
		"number_of_weeks":  numberOfWeeks,
	}
}

// CreateTemplate inserts a new session template and returns its id
func (r *TemplateRepository) CreateTemplate(ctx context.Context, tmpl *models.SessionTemplate) (int64, error) {
	values := templateValues(tmpl)
	values["created_by"] = tmpl.CreatedBy

	sqlQuery, args, err := r.sb.Insert("session_templates").
		SetMap(values).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create template SQL")
		return 0, fmt.Errorf("failed to build create template query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlQuery, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create template query")
		return 0, fmt.Errorf("error inserting template: %w", err)
	}

	logger.Info().Int64("templateID", id).Str("subject", tmpl.Subject).Msg("Session template created")
	return id, nil
}

// GetTemplateByID retrieves a template by its id
func (r *TemplateRepository) GetTemplateByID(ctx context.Context, id int64) (*models.SessionTemplate, error) {
	sqlQuery, args, err := r.sb.Select(templateColumns...).
		From("session_templates t").
		Where(squirrel.Eq{"t.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get template by ID SQL")
		return nil, fmt.Errorf("failed to build get template query: %w", err)
	}

	tmpl, err := scanTemplate(r.db.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Int64("templateID", id).Msg("Template not found by ID")
			return nil, apperrors.ErrTemplateNotFound
		}
		logger.Error().Err(err).Int64("templateID", id).Msg("Error scanning template row by ID")
		return nil, fmt.Errorf("error querying template ID=%d: %w", id, err)
	}

	return tmpl, nil
}

// ListTemplates retrieves templates with pagination, newest first.
func (r *TemplateRepository) ListTemplates(ctx context.Context, page, size int) ([]models.SessionTemplate, int64, error) {
	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("session_templates t").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count templates query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count templates query")
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	if total == 0 {
		return []models.SessionTemplate{}, 0, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sqlQuery, args, err := r.sb.Select(templateColumns...).
		From("session_templates t").
		OrderBy("t.created_at DESC", "t.id DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list templates SQL")
		return nil, 0, fmt.Errorf("failed to build list templates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list templates query")
		return nil, 0, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []models.SessionTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning template row")
			return nil, 0, fmt.Errorf("failed to scan template row: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating template rows")
		return nil, 0, fmt.Errorf("error iterating template rows: %w", err)
	}

	return templates, total, nil
}

// UpdateTemplate persists the mutable fields of a template.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, tmpl *models.SessionTemplate) error {
	values := templateValues(tmpl)
	values["updated_at"] = time.Now()

	sqlQuery, args, err := r.sb.Update("session_templates").
		SetMap(values).
		Where(squirrel.Eq{"id": tmpl.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Int64("templateID", tmpl.ID).Msg("Error building update template SQL")
		return fmt.Errorf("failed to build update template query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("templateID", tmpl.ID).Msg("Error executing update template query")
		return fmt.Errorf("error updating template ID=%d: %w", tmpl.ID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("templateID", tmpl.ID).Msg("Attempted to update non-existent template")
		return apperrors.ErrTemplateNotFound
	}

	logger.Info().Int64("templateID", tmpl.ID).Msg("Session template updated")
	return nil
}

// DeleteTemplate removes a template. Generated sessions are not
// cascade-deleted; they only lose their provenance source.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id int64) error {
	sqlQuery, args, err := r.sb.Delete("session_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Int64("templateID", id).Msg("Error building delete template SQL")
		return fmt.Errorf("failed to build delete template query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("templateID", id).Msg("Error executing delete template query")
		return fmt.Errorf("error deleting template ID=%d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("templateID", id).Msg("Attempted to delete non-existent template")
		return apperrors.ErrTemplateNotFound
	}

	logger.Info().Int64("templateID", id).Msg("Session template deleted")
	return nil
}

// AppendGeneratedIDs records provenance after a successful batch
// commit: the new session ids join the template's generated list and
// the last-applied timestamp is stamped.
func (r *TemplateRepository) AppendGeneratedIDs(ctx context.Context, id int64, sessionIDs []int64) error {
	if len(sessionIDs) == 0 {
		return nil
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE session_templates
		 SET generated_session_ids = generated_session_ids || $2,
		     last_applied_at = $3,
		     updated_at = $3
		 WHERE id = $1`,
		id, sessionIDs, time.Now())
	if err != nil {
		logger.Error().Err(err).Int64("templateID", id).Msg("Error recording template provenance")
		return fmt.Errorf("error recording provenance for template ID=%d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("templateID", id).Msg("Attempted to record provenance on non-existent template")
		return apperrors.ErrTemplateNotFound
	}

	logger.Info().Int64("templateID", id).Int("sessions", len(sessionIDs)).Msg("Template provenance recorded")
	return nil
}
