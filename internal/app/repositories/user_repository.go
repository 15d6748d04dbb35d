package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/dberrors"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// UserRepository handles user account database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"u.id", "u.email", "u.password_hash", "u.full_name", "u.role_type",
	"u.created_at", "u.updated_at",
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.RoleType,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	sqlQuery, args, err := r.sb.Select(userColumns...).
		From("users u").
		Where(squirrel.Eq{"u.email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning user row by email")
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by id
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	sqlQuery, args, err := r.sb.Select(userColumns...).
		From("users u").
		Where(squirrel.Eq{"u.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error scanning user row by ID")
		return nil, fmt.Errorf("error querying user ID=%d: %w", id, err)
	}

	return user, nil
}

// CreateUser inserts a new user account and returns its id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	sqlQuery, args, err := r.sb.Insert("users").
		Columns("email", "password_hash", "full_name", "role_type").
		Values(user.Email, user.PasswordHash, user.FullName, string(user.RoleType)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlQuery, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			logger.Warn().Str("email", user.Email).Msg("Attempted to register duplicate email")
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return 0, fmt.Errorf("error inserting user: %w", err)
	}

	logger.Info().Int64("userID", id).Str("role", string(user.RoleType)).Msg("User created")
	return id, nil
}
