package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes caller-facing contract violations.
type ErrorCode string

const (
	ErrNullGroupID       ErrorCode = "NULL_GROUP_ID"
	ErrUnknownGroupID    ErrorCode = "UNKNOWN_GROUP_ID"
	ErrNullGroupTypeID   ErrorCode = "NULL_GROUP_TYPE_ID"
	ErrUnknownGroupType  ErrorCode = "UNKNOWN_GROUP_TYPE_ID"
	ErrIncorrectType     ErrorCode = "INCORRECT_GROUP_TYPE_ID"
	ErrDuplicateType     ErrorCode = "DUPLICATE_GROUP_TYPE"
	ErrDuplicateMember   ErrorCode = "DUPLICATE_GROUP_MEMBERSHIP"
	ErrNonMember         ErrorCode = "NON_GROUP_MEMBERSHIP"
	ErrNullPersonID      ErrorCode = "NULL_PERSON_ID"
	ErrUnknownPersonID   ErrorCode = "UNKNOWN_PERSON_ID"
	ErrNullPropertyID    ErrorCode = "NULL_PROPERTY_ID"
	ErrUnknownPropertyID ErrorCode = "UNKNOWN_PROPERTY_ID"
	ErrNullValue         ErrorCode = "NULL_PROPERTY_VALUE"
	ErrIncompatibleValue ErrorCode = "INCOMPATIBLE_VALUE"
	ErrImmutableValue    ErrorCode = "IMMUTABLE_VALUE"
	ErrNullDefinition    ErrorCode = "NULL_PROPERTY_DEFINITION"
	ErrMalformedDef      ErrorCode = "MALFORMED_PROPERTY_DEFINITION"
	ErrDuplicateProperty ErrorCode = "DUPLICATE_PROPERTY_DEFINITION"
	ErrInsufficientValue ErrorCode = "INSUFFICIENT_PROPERTY_VALUE_ASSIGNMENT"
	ErrTimeNotTracked    ErrorCode = "PROPERTY_VALUE_TIME_NOT_TRACKED"
	ErrMalformedWeights  ErrorCode = "MALFORMED_GROUP_SAMPLE_WEIGHTING_FUNCTION"
	ErrAccessViolation   ErrorCode = "ACCESS_VIOLATION"
	ErrUnknownStream     ErrorCode = "UNKNOWN_RANDOM_STREAM"
)

// ContractError reports caller misuse of the store. It is returned before
// any state changes, so a failed call never leaves partial mutation behind.
type ContractError struct {
	// Code identifies the violation.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains the offending ids, keyed by name.
	Details map[string]string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// With returns the error with an added detail entry.
func (e *ContractError) With(key string, value any) *ContractError {
	if e.Details == nil {
		e.Details = make(map[string]string, 2)
	}
	e.Details[key] = fmt.Sprint(value)
	return e
}

// NewError creates a ContractError with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *ContractError {
	return &ContractError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the contract error code of err, or "" if err is not a
// ContractError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsCode reports whether err is a ContractError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
