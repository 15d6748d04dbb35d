package models

import "time"

// SessionTemplate is a recurrence definition used to mass-produce class
// sessions. Weekdays holds 0-6 (Sunday-Saturday) numbers; it is required
// for WEEKLY and CUSTOM patterns and ignored for DAILY.
type SessionTemplate struct {
	ID                  int64             `db:"id" json:"id"`
	Subject             string            `db:"subject" json:"subject"`
	ClassName           string            `db:"class_name" json:"className"`
	Section             string            `db:"section" json:"section,omitempty"`
	InstructorID        *int64            `db:"instructor_id" json:"instructorId,omitempty"`
	Room                string            `db:"room" json:"room,omitempty"`
	IsOnline            bool              `db:"is_online" json:"isOnline"`
	MeetingLink         string            `db:"meeting_link" json:"meetingLink,omitempty"`
	Capacity            int               `db:"capacity" json:"capacity"`
	Pattern             RecurrencePattern `db:"pattern" json:"pattern"`
	Weekdays            []int             `db:"weekdays" json:"weekdays,omitempty"`
	StartTime           string            `db:"start_time" json:"startTime"`
	EndTime             string            `db:"end_time" json:"endTime"`
	DurationMinutes     int               `db:"duration_minutes" json:"durationMinutes"`
	StartDate           *time.Time        `db:"start_date" json:"startDate,omitempty"`
	EndDate             *time.Time        `db:"end_date" json:"endDate,omitempty"`
	NumberOfWeeks       int               `db:"number_of_weeks" json:"numberOfWeeks,omitempty"`
	GeneratedSessionIDs []int64           `db:"generated_session_ids" json:"generatedSessionIds,omitempty"`
	LastAppliedAt       *time.Time        `db:"last_applied_at" json:"lastAppliedAt,omitempty"`
	CreatedBy           int64             `db:"created_by" json:"createdBy"`
	CreatedAt           time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updatedAt"`
}

// HasWeekday reports whether the given weekday number (0=Sunday) is a
// member of the template's weekday set.
func (t *SessionTemplate) HasWeekday(day int) bool {
	for _, d := range t.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
