package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Scheduling errors
var (
	ErrSessionNotFound  = errors.New("class session not found")
	ErrTemplateNotFound = errors.New("session template not found")
	ErrExamNotFound     = errors.New("exam not found")

	// ErrScheduleConflict indicates the proposed slot collides with
	// existing resources. The full conflict report travels in the
	// CustomError details so callers can explain why the slot is taken.
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrInvalidTransition indicates a lifecycle operation attempted
	// from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrEmptyBatch indicates a template application that would create
	// no sessions at all.
	ErrEmptyBatch = errors.New("no sessions would be generated")
)

// Content errors
var (
	ErrInvalidFormat = errors.New("invalid token format")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a custom error carrying a conflict report in
// its details. The report structure is whatever the conflict detector
// produced; the HTTP layer serializes it verbatim.
func NewConflictError(message string, report interface{}) error {
	return &CustomError{
		Err:     ErrScheduleConflict,
		Message: message,
		Details: map[string]interface{}{"conflicts": report},
	}
}

// NewInvalidTransitionError creates a custom error for a lifecycle
// operation rejected by the state machine.
func NewInvalidTransitionError(message string) error {
	return &CustomError{
		Err:     ErrInvalidTransition,
		Message: message,
	}
}

// NewValidationError creates a new custom error for malformed input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether target matches err or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
