package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/availability errors
const (
	// ErrCodeNotConnected indicates an operation was attempted before the
	// backend handle was established.
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested object was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnsupported indicates the operation is not offered by a backend.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeLocalIO indicates a failure reading or writing the local filesystem.
	ErrCodeLocalIO ErrorCode = "LOCAL_IO"
)

// Retryable marks codes a caller may reasonably retry. This package never
// retries on its own.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed:   true,
	ErrCodeServiceUnavailable: true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
