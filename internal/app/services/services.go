package services

// Services defined in this package:
// - AuthService: Handles authentication and operator registration
// - ConflictService: Detects double bookings across instructors, rooms and cohorts
// - SessionService: Owns the session lifecycle and material attachments
// - TemplateService: Expands, validates and applies recurrence templates
// - ExamService: Read-only exam listing
