package schedule

import (
	"errors"
	"time"

	"github.com/arda/classplanner/internal/app/models"
)

// MaxTemplateWeeks caps the span a single template application may
// cover. Combined with at most 7 occurrences per week this bounds the
// quadratic batch pass to a few hundred drafts.
const MaxTemplateWeeks = 52

var (
	// ErrUnresolvedRange indicates neither the caller nor the template
	// supplied enough information to bound the generation window.
	ErrUnresolvedRange = errors.New("insufficient date range: no resolvable start or end date")

	// ErrMissingWeekdays indicates a WEEKLY or CUSTOM pattern without
	// any selected weekdays.
	ErrMissingWeekdays = errors.New("weekly and custom patterns require at least one weekday")

	// ErrRangeTooLarge indicates a generation window wider than the
	// supported maximum.
	ErrRangeTooLarge = errors.New("date range exceeds the maximum template span")
)

// Draft is an in-memory candidate session produced by template
// expansion. Drafts are not persisted until the orchestrator commits
// a validated batch.
type Draft struct {
	Subject         string
	ClassName       string
	Section         string
	Date            time.Time
	StartTime       string
	EndTime         string
	DurationMinutes int
	InstructorID    *int64
	Room            string
	IsOnline        bool
	MeetingLink     string
	Capacity        int
	TemplateID      int64
	CreatedBy       int64
}

// GenerateDrafts expands a template into one draft per matching
// calendar day, ordered by ascending date. Explicit range arguments
// override the template's own window; a missing end date is derived
// from the template's start date plus its week count.
//
// The ascending order is load-bearing: batch validation compares each
// draft only against earlier drafts, so generation order must be
// stable.
func GenerateDrafts(tmpl *models.SessionTemplate, createdBy int64, rangeStart, rangeEnd *time.Time) ([]Draft, error) {
	if tmpl.Pattern.RequiresWeekdays() && len(tmpl.Weekdays) == 0 {
		return nil, ErrMissingWeekdays
	}

	start, end, err := resolveWindow(tmpl, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	if end.Sub(start) > time.Duration(MaxTemplateWeeks*7)*24*time.Hour {
		return nil, ErrRangeTooLarge
	}

	drafts := make([]Draft, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !includesDay(tmpl, day) {
			continue
		}
		drafts = append(drafts, Draft{
			Subject:         tmpl.Subject,
			ClassName:       tmpl.ClassName,
			Section:         tmpl.Section,
			Date:            day,
			StartTime:       tmpl.StartTime,
			EndTime:         tmpl.EndTime,
			DurationMinutes: tmpl.DurationMinutes,
			InstructorID:    tmpl.InstructorID,
			Room:            tmpl.Room,
			IsOnline:        tmpl.IsOnline,
			MeetingLink:     tmpl.MeetingLink,
			Capacity:        tmpl.Capacity,
			TemplateID:      tmpl.ID,
			CreatedBy:       createdBy,
		})
	}

	return drafts, nil
}

// resolveWindow determines the inclusive [start, end] generation range.
func resolveWindow(tmpl *models.SessionTemplate, rangeStart, rangeEnd *time.Time) (time.Time, time.Time, error) {
	var start time.Time
	switch {
	case rangeStart != nil:
		start = DateOnly(*rangeStart)
	case tmpl.StartDate != nil:
		start = DateOnly(*tmpl.StartDate)
	default:
		return time.Time{}, time.Time{}, ErrUnresolvedRange
	}

	var end time.Time
	switch {
	case rangeEnd != nil:
		end = DateOnly(*rangeEnd)
	case tmpl.EndDate != nil:
		end = DateOnly(*tmpl.EndDate)
	case tmpl.NumberOfWeeks > 0:
		// The walk is inclusive of end, so a week count spans exactly
		// weeks*7 days.
		end = start.AddDate(0, 0, tmpl.NumberOfWeeks*7-1)
	default:
		return time.Time{}, time.Time{}, ErrUnresolvedRange
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrUnresolvedRange
	}

	return start, end, nil
}

func includesDay(tmpl *models.SessionTemplate, day time.Time) bool {
	if tmpl.Pattern == models.PatternDaily {
		return true
	}
	return tmpl.HasWeekday(int(day.Weekday()))
}
