package models

import "time"

// SessionMaterial is a study resource attached to a session after the fact.
type SessionMaterial struct {
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"addedAt"`
}

// ClassSession represents a single bookable class occurrence.
// StartTime and EndTime are wall-clock "HH:MM" strings on SessionDate;
// only the date component of SessionDate is meaningful.
type ClassSession struct {
	ID              int64             `db:"id" json:"id"`
	Subject         string            `db:"subject" json:"subject"`
	ClassName       string            `db:"class_name" json:"className"`
	Section         string            `db:"section" json:"section,omitempty"`
	SessionDate     time.Time         `db:"session_date" json:"sessionDate"`
	StartTime       string            `db:"start_time" json:"startTime"`
	EndTime         string            `db:"end_time" json:"endTime"`
	DurationMinutes int               `db:"duration_minutes" json:"durationMinutes"`
	InstructorID    *int64            `db:"instructor_id" json:"instructorId,omitempty"`
	Room            string            `db:"room" json:"room,omitempty"`
	IsOnline        bool              `db:"is_online" json:"isOnline"`
	MeetingLink     string            `db:"meeting_link" json:"meetingLink,omitempty"`
	Capacity        int               `db:"capacity" json:"capacity"`
	Status          SessionStatus     `db:"status" json:"status"`
	CancelReason    string            `db:"cancel_reason" json:"cancelReason,omitempty"`
	RescheduledFrom *time.Time        `db:"rescheduled_from" json:"rescheduledFrom,omitempty"`
	RescheduledTo   *time.Time        `db:"rescheduled_to" json:"rescheduledTo,omitempty"`
	ReminderSent    bool              `db:"reminder_sent" json:"reminderSent"`
	Materials       []SessionMaterial `db:"materials" json:"materials,omitempty"`
	TemplateID      *int64            `db:"template_id" json:"templateId,omitempty"`
	CreatedBy       int64             `db:"created_by" json:"createdBy"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updatedAt"`

	// Populated from joins, not stored on the session row
	InstructorName string `json:"instructorName,omitempty"`
}

// CohortKey returns the identifier of the student group the session
// belongs to. Two sessions share a cohort iff class and section match.
func (s *ClassSession) CohortKey() string {
	if s.Section == "" {
		return s.ClassName
	}
	return s.ClassName + "/" + s.Section
}
