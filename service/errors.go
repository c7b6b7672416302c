package service

import (
	"errors"
	"fmt"

	"worktime/internal/timeutil"
	"worktime/storage"
)

const (
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeAuthorization = "AUTHORIZATION_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// Error is the typed failure returned by every service operation.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewNotFound(resource string, id any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid value for field '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewInvalidFormat(field string, err error) *Error {
	return &Error{
		Code:    CodeInvalidFormat,
		Message: fmt.Sprintf("field '%s' is not a valid date or time", field),
		Details: map[string]any{"field": field},
		Err:     err,
	}
}

func NewAuthorizationError(operation string) *Error {
	return &Error{
		Code:    CodeAuthorization,
		Message: fmt.Sprintf("not allowed to %s", operation),
		Details: map[string]any{"operation": operation},
	}
}

func NewInternal(operation string, err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: fmt.Sprintf("%s failed", operation),
		Err:     err,
	}
}

// CodeOf classifies err. Errors that are not *Error count as internal.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return CodeInternal
}

// storeError maps persistence failures onto service errors.
func storeError(operation, resource string, id any, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return NewNotFound(resource, id)
	case errors.Is(err, storage.ErrInvalidInterval):
		return NewValidationError("endTime", "must be after startTime")
	case errors.Is(err, storage.ErrConflict):
		return NewValidationError(resource, "already exists")
	case errors.Is(err, timeutil.ErrInvalidFormat):
		return NewInvalidFormat(resource, err)
	default:
		return NewInternal(operation, err)
	}
}
