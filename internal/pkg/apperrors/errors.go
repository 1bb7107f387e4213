package apperrors

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Student Errors
var (
	ErrStudentNotFound          = NewResourceNotFoundError("student not found")
	ErrStudentIDAlreadyExists   = NewConflictError("student ID already exists")
	ErrBadgeNumberAlreadyExists = NewConflictError("badge number already exists")
	ErrInvalidStudentRecordID   = NewBadRequestError("invalid student record id")
)

// Upload Errors
var (
	ErrImageRequired        = NewBadRequestError("profile image is required")
	ErrUnsupportedImageType = errors.New("only .png, .jpg and .jpeg format is allowed")
	ErrImageTooLarge        = errors.New("image exceeds the maximum upload size")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
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

// Is returns whether err matches target or any of the errors in errList
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
	Err     error
	Message string
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

// FieldViolation is a single rejected input field
type FieldViolation struct {
	Field   string
	Value   string
	Message string
}

// ValidationError carries every field that failed validation for one request
type ValidationError struct {
	Violations []FieldViolation
}

// Add records a violation for field
func (e *ValidationError) Add(field, value, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Value: value, Message: message})
}

// HasViolations reports whether anything was recorded
func (e *ValidationError) HasViolations() bool {
	return e != nil && len(e.Violations) > 0
}

// Error implements error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrValidationFailed
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
