// Package errors provides the application error type and the stable,
// machine-readable error codes surfaced at the service boundary.
package errors

// Code is a stable error code for programmatic handling by callers.
type Code string

const (
	CodeValidationFailed        Code = "VALIDATION_FAILED"
	CodeNotFound                Code = "NOT_FOUND"
	CodeUniquenessConflict      Code = "UNIQUENESS_CONFLICT"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"
	CodeConcurrentModification  Code = "CONCURRENT_MODIFICATION"
	CodeTransactionConflict     Code = "TRANSACTION_CONFLICT"
	CodeStoreUnavailable        Code = "STORE_UNAVAILABLE"
	CodeInternal                Code = "INTERNAL_ERROR"
)

// HTTPStatus returns the HTTP status code a surfaced error maps to.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidationFailed, CodeInvalidStatusTransition:
		return 400
	case CodeNotFound:
		return 404
	case CodeUniquenessConflict, CodeConcurrentModification, CodeTransactionConflict:
		return 409
	case CodeStoreUnavailable:
		return 503
	default:
		return 500
	}
}

// IsRetryable reports whether an operation failing with this code may be
// retried automatically inside the service boundary. Caller-input errors
// are never retried.
func (c Code) IsRetryable() bool {
	switch c {
	case CodeConcurrentModification, CodeTransactionConflict, CodeStoreUnavailable:
		return true
	default:
		return false
	}
}

func (c Code) String() string {
	return string(c)
}
