package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleInstructor RoleType = "INSTRUCTOR"
)

// SessionStatus defines the lifecycle state of a class session
type SessionStatus string

const (
	SessionScheduled   SessionStatus = "SCHEDULED"
	SessionOngoing     SessionStatus = "ONGOING"
	SessionCompleted   SessionStatus = "COMPLETED"
	SessionCancelled   SessionStatus = "CANCELLED"
	SessionRescheduled SessionStatus = "RESCHEDULED"
)

// IsTerminal reports whether the status permits no further lifecycle
// transitions. COMPLETED and CANCELLED sessions are immutable.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// IsActive reports whether the session still occupies its resources for
// conflict detection purposes. RESCHEDULED counts as active: the session
// keeps operating at its new date and time.
func (s SessionStatus) IsActive() bool {
	return s == SessionScheduled || s == SessionOngoing || s == SessionRescheduled
}

// RecurrencePattern defines how a template expands into sessions
type RecurrencePattern string

const (
	PatternDaily  RecurrencePattern = "DAILY"
	PatternWeekly RecurrencePattern = "WEEKLY"
	PatternCustom RecurrencePattern = "CUSTOM"
)

// RequiresWeekdays reports whether the pattern needs a non-empty weekday set.
func (p RecurrencePattern) RequiresWeekdays() bool {
	return p == PatternWeekly || p == PatternCustom
}

// ExamStatus defines the state of an exam record
type ExamStatus string

const (
	ExamScheduled ExamStatus = "SCHEDULED"
	ExamCompleted ExamStatus = "COMPLETED"
	ExamCancelled ExamStatus = "CANCELLED"
)
