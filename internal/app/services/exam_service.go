package services

import (
	"context"

	"github.com/arda/classplanner/internal/app/models"
)

// ExamStore lists exams for the read-only exam surface.
type ExamStore interface {
	ListExams(ctx context.Context, page, size int) ([]models.Exam, int64, error)
}

// ExamService exposes the exams the conflict detector consults. Exams
// are managed by a separate system; here they are read only.
type ExamService struct {
	examStore ExamStore
}

// NewExamService creates a new exam service instance
func NewExamService(examStore ExamStore) *ExamService {
	return &ExamService{examStore: examStore}
}

// ListExams retrieves exams, paginated.
func (s *ExamService) ListExams(ctx context.Context, page, size int) ([]models.Exam, int64, error) {
	return s.examStore.ListExams(ctx, page, size)
}
