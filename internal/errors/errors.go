package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes an error for handling and response mapping.
type ErrorType string

const (
	TypeValidation  ErrorType = "VALIDATION"
	TypeNotFound    ErrorType = "NOT_FOUND"
	TypeConflict    ErrorType = "CONFLICT"
	TypeUnavailable ErrorType = "UNAVAILABLE"
	TypeInternal    ErrorType = "INTERNAL"
)

// AppError is the single error type crossing the service boundary. Internal
// causes are carried for logging but never serialized to callers.
type AppError struct {
	Type      ErrorType         `json:"type"`
	Code      Code              `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable"`
	Cause     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithField records a field-level detail, used by validation failures.
func (e *AppError) WithField(field, detail string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = detail
	return e
}

// NewValidationError creates a caller-input validation error.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    CodeValidationFailed,
		Message: message,
	}
}

// NewNotFoundError creates an error for an absent entity.
func NewNotFoundError(resource, id string) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, id),
	}
}

// NewUniquenessConflictError signals a code collision within its scope
// (school code per tenant, department code per school).
func NewUniquenessConflictError(message string) *AppError {
	return &AppError{
		Type:    TypeConflict,
		Code:    CodeUniquenessConflict,
		Message: message,
	}
}

// NewInvalidTransitionError signals a status transition the state machine
// does not allow.
func NewInvalidTransitionError(entity, from, to string) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    CodeInvalidStatusTransition,
		Message: fmt.Sprintf("%s status cannot transition from %q to %q", entity, from, to),
	}
}

// NewConcurrentModificationError is surfaced after the retry budget for a
// version-conflicted update is exhausted. The caller should refresh and retry.
func NewConcurrentModificationError(resource string) *AppError {
	return &AppError{
		Type:      TypeConflict,
		Code:      CodeConcurrentModification,
		Message:   fmt.Sprintf("%s was modified concurrently; refresh and retry", resource),
		Retryable: true,
	}
}

// NewTransactionConflictError is surfaced after an atomic multi-record write
// keeps aborting due to concurrent writers.
func NewTransactionConflictError(message string) *AppError {
	return &AppError{
		Type:      TypeConflict,
		Code:      CodeTransactionConflict,
		Message:   message,
		Retryable: true,
	}
}

// NewStoreUnavailableError wraps a transient infrastructure failure.
func NewStoreUnavailableError(cause error) *AppError {
	return &AppError{
		Type:      TypeUnavailable,
		Code:      CodeStoreUnavailable,
		Message:   "document store is temporarily unavailable",
		Retryable: true,
		Cause:     cause,
	}
}

// NewInternalError wraps an unexpected failure without leaking its detail.
func NewInternalError(cause error) *AppError {
	return &AppError{
		Type:    TypeInternal,
		Code:    CodeInternal,
		Message: "internal error",
		Cause:   cause,
	}
}

// AsAppError extracts an AppError from an error chain, or wraps the error as
// an internal one so callers always see a stable code.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// IsType checks whether an error chain contains an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsCode checks whether an error chain contains an AppError with the given code.
func IsCode(err error, c Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == c
	}
	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return IsType(err, TypeNotFound)
}

// IsValidation reports whether err is a caller-input validation error.
func IsValidation(err error) bool {
	return IsType(err, TypeValidation)
}

// IsRetryable reports whether the failed operation may be retried.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
