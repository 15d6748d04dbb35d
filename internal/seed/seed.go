package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appModels "github.com/arda/classplanner/internal/app/models"
	appRepos "github.com/arda/classplanner/internal/app/repositories"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/auth"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// CreateDefaultData seeds a default admin account and a couple of exams
// so a fresh install has something for the conflict detector to check
// against. Existing rows are left alone.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	examRepo := appRepos.NewExamRepository(dbPool)

	logger.Info().Msg("Checking/Creating default data...")
	var finalErr error

	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Email:        "admin@classplanner.local",
		PasswordHash: hash,
		FullName:     "Default Admin",
		RoleType:     appModels.RoleAdmin,
	}
	if _, err := userRepo.CreateUser(ctx, admin); err != nil {
		if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			logger.Error().Err(err).Msg("Error creating default admin account")
			finalErr = errors.Join(finalErr, err)
		}
	} else {
		logger.Info().Str("email", admin.Email).Msg("Default admin account created")
	}

	// A sample exam two weeks out, so room and cohort checks have a
	// record to collide with during evaluation.
	examDate := time.Now().UTC().AddDate(0, 0, 14).Truncate(24 * time.Hour)
	exams := []appModels.Exam{
		{
			Subject:   "Mathematics",
			ClassName: "Grade 10",
			Section:   "A",
			ExamDate:  examDate,
			StartTime: "09:00",
			EndTime:   "11:00",
			Room:      "Hall 1",
			Status:    appModels.ExamScheduled,
		},
		{
			Subject:   "Physics",
			ClassName: "Grade 11",
			ExamDate:  examDate,
			StartTime: "13:00",
			EndTime:   "15:00",
			Room:      "Hall 1",
			Status:    appModels.ExamScheduled,
		},
	}

	for i := range exams {
		if err := examRepo.CreateExamIfAbsent(ctx, &exams[i]); err != nil {
			logger.Error().Err(err).Str("subject", exams[i].Subject).Msg("Error seeding exam")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
