package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/pkg/helpers"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// ExamRepository reads exam records. Exams are a read-only collaborator
// of the scheduling engine: they are consulted for room and cohort
// conflicts but never mutated here.
type ExamRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var examColumns = []string{
	"e.id", "e.subject", "e.class_name", "e.section",
	"e.exam_date", "e.start_time", "e.end_time", "e.room", "e.status",
	"e.created_at",
}

func scanExam(row rowScanner) (*models.Exam, error) {
	var e models.Exam
	var section, room sql.NullString

	err := row.Scan(
		&e.ID, &e.Subject, &e.ClassName, &section,
		&e.ExamDate, &e.StartTime, &e.EndTime, &room, &e.Status,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Section = section.String
	e.Room = room.String
	return &e, nil
}

// FindByRoomAndDate returns scheduled exams occupying a room on a
// calendar day.
func (r *ExamRepository) FindByRoomAndDate(ctx context.Context, room string, date time.Time) ([]models.Exam, error) {
	where := squirrel.And{
		squirrel.Eq{"e.room": room},
		squirrel.Eq{"e.exam_date": date},
		squirrel.Eq{"e.status": string(models.ExamScheduled)},
	}
	return r.find(ctx, where)
}

// FindByCohortAndDate returns scheduled exams booked for a student
// cohort on a calendar day.
func (r *ExamRepository) FindByCohortAndDate(ctx context.Context, className, section string, date time.Time) ([]models.Exam, error) {
	where := squirrel.And{
		squirrel.Eq{"e.class_name": className},
		squirrel.Eq{"e.exam_date": date},
		squirrel.Eq{"e.status": string(models.ExamScheduled)},
	}
	if section == "" {
		where = append(where, squirrel.Or{squirrel.Eq{"e.section": nil}, squirrel.Eq{"e.section": ""}})
	} else {
		where = append(where, squirrel.Eq{"e.section": section})
	}
	return r.find(ctx, where)
}

// CreateExamIfAbsent inserts an exam unless an identical booking already
// exists for the same subject, cohort and date. Used by the seeder so
// restarts do not duplicate the demo data.
func (r *ExamRepository) CreateExamIfAbsent(ctx context.Context, exam *models.Exam) error {
	where := squirrel.And{
		squirrel.Eq{"e.subject": exam.Subject},
		squirrel.Eq{"e.class_name": exam.ClassName},
		squirrel.Eq{"e.exam_date": exam.ExamDate},
		squirrel.Eq{"e.start_time": exam.StartTime},
	}
	if exam.Section == "" {
		where = append(where, squirrel.Or{squirrel.Eq{"e.section": nil}, squirrel.Eq{"e.section": ""}})
	} else {
		where = append(where, squirrel.Eq{"e.section": exam.Section})
	}

	existsSQL, existsArgs, err := r.sb.Select("e.id").
		From("exams e").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build exam lookup query: %w", err)
	}

	var existingID int64
	err = r.db.QueryRow(ctx, existsSQL, existsArgs...).Scan(&existingID)
	if err == nil {
		exam.ID = existingID
		return nil
	}
	if err != pgx.ErrNoRows {
		logger.Error().Err(err).Msg("Error checking for existing exam")
		return fmt.Errorf("failed to check for existing exam: %w", err)
	}

	insertSQL, insertArgs, err := r.sb.Insert("exams").
		Columns("subject", "class_name", "section", "exam_date", "start_time", "end_time", "room", "status").
		Values(
			exam.Subject, exam.ClassName, helpers.GetContentNullString(exam.Section),
			exam.ExamDate, exam.StartTime, exam.EndTime,
			helpers.GetContentNullString(exam.Room), string(exam.Status),
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert exam query: %w", err)
	}

	if err := r.db.QueryRow(ctx, insertSQL, insertArgs...).Scan(&exam.ID, &exam.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error inserting exam")
		return fmt.Errorf("failed to insert exam: %w", err)
	}
	return nil
}

func (r *ExamRepository) find(ctx context.Context, where squirrel.And) ([]models.Exam, error) {
	sqlQuery, args, err := r.sb.Select(examColumns...).
		From("exams e").
		Where(where).
		OrderBy("e.start_time ASC", "e.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building find exams SQL")
		return nil, fmt.Errorf("failed to build find exams query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing find exams query")
		return nil, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	return collectExams(rows)
}

// ListExams retrieves exams with pagination, newest date first.
func (r *ExamRepository) ListExams(ctx context.Context, page, size int) ([]models.Exam, int64, error) {
	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("exams e").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count exams query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count exams query")
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	if total == 0 {
		return []models.Exam{}, 0, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sqlQuery, args, err := r.sb.Select(examColumns...).
		From("exams e").
		OrderBy("e.exam_date DESC", "e.start_time ASC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list exams SQL")
		return nil, 0, fmt.Errorf("failed to build list exams query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list exams query")
		return nil, 0, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	exams, err := collectExams(rows)
	if err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

func collectExams(rows pgx.Rows) ([]models.Exam, error) {
	var exams []models.Exam
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning exam row")
			return nil, fmt.Errorf("failed to scan exam row: %w", err)
		}
		exams = append(exams, *exam)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating exam rows")
		return nil, fmt.Errorf("error iterating exam rows: %w", err)
	}
	return exams, nil
}
