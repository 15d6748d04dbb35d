package services

import (
	"context"
	"sync"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/repositories"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/notification"
	"github.com/arda/classplanner/internal/pkg/schedule"
)

// fakeSessionStore is an in-memory SessionStore and SessionBatchStore.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*models.ClassSession
	nextID   int64
	batchErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[int64]*models.ClassSession{}, nextID: 1}
}

func (f *fakeSessionStore) add(s models.ClassSession) *models.ClassSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == 0 {
		s.ID = f.nextID
		f.nextID++
	} else if s.ID >= f.nextID {
		f.nextID = s.ID + 1
	}
	clone := s
	f.sessions[clone.ID] = &clone
	return &clone
}

func (f *fakeSessionStore) CreateSession(_ context.Context, session *models.ClassSession) (int64, error) {
	created := f.add(*session)
	return created.ID, nil
}

func (f *fakeSessionStore) GetSessionByID(_ context.Context, id int64) (*models.ClassSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) ListSessions(_ context.Context, _ repositories.SessionFilter, _, _ int) ([]models.ClassSession, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ClassSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionStore) UpdateSession(_ context.Context, session *models.ClassSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) CreateSessionBatch(_ context.Context, sessions []*models.ClassSession) ([]int64, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		created := f.add(*s)
		ids[i] = created.ID
	}
	return ids, nil
}

func (f *fakeSessionStore) findActive(date time.Time, excludeID int64, match func(*models.ClassSession) bool) []models.ClassSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ClassSession
	for _, s := range f.sessions {
		if s.ID == excludeID || !s.Status.IsActive() || !schedule.SameDay(s.SessionDate, date) {
			continue
		}
		if match(s) {
			out = append(out, *s)
		}
	}
	return out
}

func (f *fakeSessionStore) FindActiveByInstructorAndDate(_ context.Context, instructorID int64, date time.Time, excludeID int64) ([]models.ClassSession, error) {
	return f.findActive(date, excludeID, func(s *models.ClassSession) bool {
		return s.InstructorID != nil && *s.InstructorID == instructorID
	}), nil
}

func (f *fakeSessionStore) FindActiveByRoomAndDate(_ context.Context, room string, date time.Time, excludeID int64) ([]models.ClassSession, error) {
	return f.findActive(date, excludeID, func(s *models.ClassSession) bool {
		return s.Room != "" && s.Room == room
	}), nil
}

func (f *fakeSessionStore) FindActiveByCohortAndDate(_ context.Context, className, section string, date time.Time, excludeID int64) ([]models.ClassSession, error) {
	return f.findActive(date, excludeID, func(s *models.ClassSession) bool {
		return s.ClassName == className && s.Section == section
	}), nil
}

// fakeExamStore is an in-memory ExamConflictStore and ExamStore.
type fakeExamStore struct {
	exams []models.Exam
}

func (f *fakeExamStore) findScheduled(date time.Time, match func(*models.Exam) bool) []models.Exam {
	var out []models.Exam
	for i := range f.exams {
		e := &f.exams[i]
		if e.Status != models.ExamScheduled || !schedule.SameDay(e.ExamDate, date) {
			continue
		}
		if match(e) {
			out = append(out, *e)
		}
	}
	return out
}

func (f *fakeExamStore) FindByRoomAndDate(_ context.Context, room string, date time.Time) ([]models.Exam, error) {
	return f.findScheduled(date, func(e *models.Exam) bool { return e.Room == room }), nil
}

func (f *fakeExamStore) FindByCohortAndDate(_ context.Context, className, section string, date time.Time) ([]models.Exam, error) {
	return f.findScheduled(date, func(e *models.Exam) bool {
		return e.ClassName == className && e.Section == section
	}), nil
}

func (f *fakeExamStore) ListExams(_ context.Context, _, _ int) ([]models.Exam, int64, error) {
	return f.exams, int64(len(f.exams)), nil
}

// fakeTemplateStore is an in-memory TemplateStore.
type fakeTemplateStore struct {
	mu        sync.Mutex
	templates map[int64]*models.SessionTemplate
	nextID    int64
	appended  map[int64][]int64
	appendErr error
}

func newFakeTemplateStore() *fakeTemplateStore {
	return &fakeTemplateStore{
		templates: map[int64]*models.SessionTemplate{},
		nextID:    1,
		appended:  map[int64][]int64{},
	}
}

func (f *fakeTemplateStore) add(t models.SessionTemplate) *models.SessionTemplate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextID
		f.nextID++
	} else if t.ID >= f.nextID {
		f.nextID = t.ID + 1
	}
	clone := t
	f.templates[clone.ID] = &clone
	return &clone
}

func (f *fakeTemplateStore) CreateTemplate(_ context.Context, tmpl *models.SessionTemplate) (int64, error) {
	created := f.add(*tmpl)
	return created.ID, nil
}

func (f *fakeTemplateStore) GetTemplateByID(_ context.Context, id int64) (*models.SessionTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[id]
	if !ok {
		return nil, apperrors.ErrTemplateNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTemplateStore) ListTemplates(_ context.Context, _, _ int) ([]models.SessionTemplate, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SessionTemplate, 0, len(f.templates))
	for _, t := range f.templates {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTemplateStore) UpdateTemplate(_ context.Context, tmpl *models.SessionTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.templates[tmpl.ID]; !ok {
		return apperrors.ErrTemplateNotFound
	}
	clone := *tmpl
	f.templates[tmpl.ID] = &clone
	return nil
}

func (f *fakeTemplateStore) DeleteTemplate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.templates[id]; !ok {
		return apperrors.ErrTemplateNotFound
	}
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateStore) AppendGeneratedIDs(_ context.Context, id int64, sessionIDs []int64) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended[id] = append(f.appended[id], sessionIDs...)
	if t, ok := f.templates[id]; ok {
		t.GeneratedSessionIDs = append(t.GeneratedSessionIDs, sessionIDs...)
		now := time.Now().UTC()
		t.LastAppliedAt = &now
	}
	return nil
}

// captureNotifier records every dispatched event.
type captureNotifier struct {
	mu     sync.Mutex
	events []notification.EventKind
}

func (n *captureNotifier) SessionEvent(_ *models.ClassSession, kind notification.EventKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
}

func (n *captureNotifier) kinds() []notification.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.EventKind, len(n.events))
	copy(out, n.events)
	return out
}

// panicNotifier always panics; used to prove notification failures do
// not break the triggering mutation.
type panicNotifier struct{}

func (panicNotifier) SessionEvent(*models.ClassSession, notification.EventKind) {
	panic("notifier exploded")
}
