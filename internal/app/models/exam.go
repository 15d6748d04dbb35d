package models

import "time"

// Exam is a read-only collaborator of the scheduling engine. Exams are
// consulted for room and cohort conflicts but never mutated here.
type Exam struct {
	ID        int64      `db:"id" json:"id"`
	Subject   string     `db:"subject" json:"subject"`
	ClassName string     `db:"class_name" json:"className"`
	Section   string     `db:"section" json:"section,omitempty"`
	ExamDate  time.Time  `db:"exam_date" json:"examDate"`
	StartTime string     `db:"start_time" json:"startTime"`
	EndTime   string     `db:"end_time" json:"endTime"`
	Room      string     `db:"room" json:"room,omitempty"`
	Status    ExamStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
