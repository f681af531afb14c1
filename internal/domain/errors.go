package domain

import (
	"fmt"
)

// Error codes for the failure categories the tracker distinguishes.
const (
	ErrValidation  = "VALIDATION_ERROR"
	ErrPersistence = "PERSISTENCE_ERROR"
	ErrSummary     = "SUMMARY_GENERATION_ERROR"
)

// ValidationError represents a user input failing a field constraint.
// It is recoverable: nothing reaches the record store when one is returned.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// PersistenceError reports that an underlying store read or write failed.
// The in-memory mutation it accompanies has already been applied; the session
// keeps working but may not survive a restart.
type PersistenceError struct {
	Op  string // "load", "save records", "save profile"
	Err error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError creates a new PersistenceError
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// SummaryGenerationError reports that the external AI collaborator was
// unreachable, errored, or returned unusable output. No state changes; the
// caller may retry.
type SummaryGenerationError struct {
	Stage string // "request", "response"
	Err   error
}

// Error implements the error interface
func (e *SummaryGenerationError) Error() string {
	return fmt.Sprintf("summary generation failed (%s): %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause
func (e *SummaryGenerationError) Unwrap() error { return e.Err }

// NewSummaryGenerationError creates a new SummaryGenerationError
func NewSummaryGenerationError(stage string, err error) *SummaryGenerationError {
	return &SummaryGenerationError{Stage: stage, Err: err}
}
