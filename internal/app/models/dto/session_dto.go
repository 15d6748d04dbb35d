package dto

// CreateSessionRequest creates a single class session directly.
type CreateSessionRequest struct {
	Subject      string `json:"subject" binding:"required,min=2,max=150"`
	ClassName    string `json:"className" binding:"required,min=1,max=100"`
	Section      string `json:"section" binding:"omitempty,max=50"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" binding:"required,hhmm"`
	EndTime      string `json:"endTime" binding:"required,hhmm"`
	InstructorID *int64 `json:"instructorId"`
	Room         string `json:"room" binding:"omitempty,max=100"`
	IsOnline     bool   `json:"isOnline"`
	MeetingLink  string `json:"meetingLink" binding:"omitempty,url"`
	Capacity     int    `json:"capacity" binding:"omitempty,min=1,max=1000"`
}

// UpdateSessionRequest patches a session. Nil pointers leave fields
// untouched; a change to any schedule-affecting field (date, times,
// room, instructor) triggers a conflict re-check.
type UpdateSessionRequest struct {
	Subject      *string `json:"subject" binding:"omitempty,min=2,max=150"`
	Date         *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime    *string `json:"startTime" binding:"omitempty,hhmm"`
	EndTime      *string `json:"endTime" binding:"omitempty,hhmm"`
	InstructorID *int64  `json:"instructorId"`
	Room         *string `json:"room" binding:"omitempty,max=100"`
	IsOnline     *bool   `json:"isOnline"`
	MeetingLink  *string `json:"meetingLink" binding:"omitempty,url"`
	Capacity     *int    `json:"capacity" binding:"omitempty,min=1,max=1000"`
}

// RescheduleSessionRequest moves a session to a new slot. Room is
// optional; when empty the session keeps its current room.
type RescheduleSessionRequest struct {
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required,hhmm"`
	Room      string `json:"room" binding:"omitempty,max=100"`
}

// CancelSessionRequest cancels a session with a reason for the record.
type CancelSessionRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// AddMaterialRequest attaches a study resource to a session.
type AddMaterialRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
	URL   string `json:"url" binding:"required,url"`
}

// SessionFilterRequest narrows the session listing.
type SessionFilterRequest struct {
	ClassName    string `form:"className"`
	Section      string `form:"section"`
	InstructorID *int64 `form:"instructorId"`
	Status       string `form:"status"`
	DateFrom     string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo       string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
}
