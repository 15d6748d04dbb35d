package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	SessionRepository  *SessionRepository
	TemplateRepository *TemplateRepository
	ExamRepository     *ExamRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(db),
		SessionRepository:  NewSessionRepository(db),
		TemplateRepository: NewTemplateRepository(db),
		ExamRepository:     NewExamRepository(db),
	}
}
