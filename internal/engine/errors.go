package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected by the scheduler.
//
// Runtime errors include:
//   - Past time: a plan was scheduled before the current time
//   - Invalid time: a plan time is NaN or infinite
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Plan names the affected plan.
	Plan string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodePastTime indicates a plan was scheduled before the current time.
	ErrCodePastTime RuntimeErrorCode = "PAST_TIME"

	// ErrCodeInvalidTime indicates a plan time that is not a finite number.
	ErrCodeInvalidTime RuntimeErrorCode = "INVALID_TIME"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Plan != "" {
		return fmt.Sprintf("%s: %s (plan=%s)", e.Code, e.Message, e.Plan)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPastTimeError returns true if the error is a past time error.
// Uses errors.As to handle wrapped errors.
func IsPastTimeError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodePastTime
	}
	return false
}

// NewPastTimeError creates a RuntimeError for a plan scheduled in the past.
func NewPastTimeError(name string, at, now float64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodePastTime,
		Message: fmt.Sprintf("plan time %v is before current time %v", at, now),
		Plan:    name,
		Details: map[string]string{
			"at":  fmt.Sprint(at),
			"now": fmt.Sprint(now),
		},
	}
}
