package dto

import (
	"time"

	"github.com/arda/classplanner/internal/app/models"
)

// CreateTemplateRequest defines a recurrence template. Weekdays uses
// 0-6 (Sunday-Saturday) numbers and is required for WEEKLY and CUSTOM
// patterns. Duration is recomputed from the time window on every save.
type CreateTemplateRequest struct {
	Subject       string  `json:"subject" binding:"required,min=2,max=150"`
	ClassName     string  `json:"className" binding:"required,min=1,max=100"`
	Section       string  `json:"section" binding:"omitempty,max=50"`
	InstructorID  *int64  `json:"instructorId"`
	Room          string  `json:"room" binding:"omitempty,max=100"`
	IsOnline      bool    `json:"isOnline"`
	MeetingLink   string  `json:"meetingLink" binding:"omitempty,url"`
	Capacity      int     `json:"capacity" binding:"omitempty,min=1,max=1000"`
	Pattern       string  `json:"pattern" binding:"required,oneof=DAILY WEEKLY CUSTOM"`
	Weekdays      []int   `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
	StartTime     string  `json:"startTime" binding:"required,hhmm"`
	EndTime       string  `json:"endTime" binding:"required,hhmm"`
	StartDate     *string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	NumberOfWeeks int     `json:"numberOfWeeks" binding:"omitempty,min=1,max=52"`
}

// UpdateTemplateRequest mirrors CreateTemplateRequest; templates are
// replaced whole rather than patched field by field.
type UpdateTemplateRequest = CreateTemplateRequest

// TemplateRangeRequest bounds a preview or apply run. Either date may
// be omitted, in which case the template's own window applies.
type TemplateRangeRequest struct {
	StartDate *string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

// ApplyTemplateRequest commits a template batch. With SkipConflicts
// false (the default) any conflict rejects the whole batch; with true,
// conflicting drafts are skipped and the rest persist.
type ApplyTemplateRequest struct {
	StartDate     *string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	SkipConflicts bool    `json:"skipConflicts"`
}

// ApplyTemplateResult reports the outcome of a committed batch.
type ApplyTemplateResult struct {
	Created         int                    `json:"created"`
	Skipped         int                    `json:"skipped"`
	Sessions        []models.ClassSession  `json:"sessions"`
	SkippedDrafts   []DraftValidation      `json:"skippedDrafts,omitempty"`
	TemplateID      int64                  `json:"templateId"`
	AppliedAt       time.Time              `json:"appliedAt"`
	TemplateSummary *models.SessionTemplate `json:"template,omitempty"`
}
