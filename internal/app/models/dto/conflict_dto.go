package dto

import (
	"time"

	"github.com/arda/classplanner/internal/pkg/schedule"
)

// ConflictRecordType tags which record space a conflicting entry lives in.
type ConflictRecordType string

const (
	ConflictRecordSession ConflictRecordType = "session"
	ConflictRecordExam    ConflictRecordType = "exam"
)

// ConflictEntry describes one existing record that overlaps a proposal.
// It carries enough structure for a UI to explain why the slot is
// unavailable.
type ConflictEntry struct {
	Type      ConflictRecordType `json:"type" example:"session"`
	ID        int64              `json:"id" example:"7"`
	Label     string             `json:"label" example:"Mathematics (Grade 10/A)"`
	Date      time.Time          `json:"date"`
	StartTime string             `json:"startTime" example:"09:00"`
	EndTime   string             `json:"endTime" example:"10:00"`
}

// ConflictReport partitions overlapping records by resource dimension.
// A proposal may conflict on all three dimensions at once.
type ConflictReport struct {
	Instructor   []ConflictEntry `json:"instructor"`
	Room         []ConflictEntry `json:"room"`
	Students     []ConflictEntry `json:"students"`
	HasConflicts bool            `json:"hasConflicts"`
}

// NewConflictReport returns an empty report with non-nil dimension lists
// so JSON renders [] rather than null.
func NewConflictReport() *ConflictReport {
	return &ConflictReport{
		Instructor: []ConflictEntry{},
		Room:       []ConflictEntry{},
		Students:   []ConflictEntry{},
	}
}

// Recount recomputes HasConflicts from the dimension lists.
func (r *ConflictReport) Recount() {
	r.HasConflicts = len(r.Instructor) > 0 || len(r.Room) > 0 || len(r.Students) > 0
}

// ConflictCheckRequest is a proposed slot to test against existing
// bookings. InstructorID and Room are optional; an absent resource
// simply skips that dimension.
type ConflictCheckRequest struct {
	InstructorID *int64 `json:"instructorId"`
	Room         string `json:"room"`
	ClassName    string `json:"className" binding:"required"`
	Section      string `json:"section"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" binding:"required,hhmm"`
	EndTime      string `json:"endTime" binding:"required,hhmm"`
}

// DraftValidation is the per-draft result of validating a template
// batch: conflicts against persisted data plus collisions with earlier
// drafts of the same batch.
type DraftValidation struct {
	Index          int                      `json:"index"`
	Date           time.Time                `json:"date"`
	StartTime      string                   `json:"startTime"`
	EndTime        string                   `json:"endTime"`
	Conflicts      *ConflictReport          `json:"conflicts"`
	BatchConflicts []schedule.BatchConflict `json:"batchConflicts"`
	HasConflicts   bool                     `json:"hasConflicts"`
}

// BatchValidationSummary aggregates a whole batch validation run.
type BatchValidationSummary struct {
	TotalDrafts      int               `json:"totalDrafts"`
	ConflictingCount int               `json:"conflictingCount"`
	HasConflicts     bool              `json:"hasConflicts"`
	Drafts           []DraftValidation `json:"drafts"`
}
