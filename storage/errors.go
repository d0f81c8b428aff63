package storage

import (
	stderrors "errors"

	apperrors "github.com/libcatapult/catapult/errors"
)

// Sentinels for errors.Is. Any AppError with the same code matches, so
// callers can test the errors returned by backends against these directly.
var (
	ErrNotConnected   = apperrors.New(apperrors.ErrCodeNotConnected, "storage backend is not connected")
	ErrObjectNotFound = apperrors.New(apperrors.ErrCodeNotFound, "object not found")
	ErrUnsupported    = apperrors.New(apperrors.ErrCodeUnsupported, "operation not supported by backend")
)

// Kind classifies a storage error.
type Kind int

const (
	// KindNone means the error was nil.
	KindNone Kind = iota
	// KindNotConnected means the operation ran before Connect or after Close.
	KindNotConnected
	// KindObjectNotFound means the remote object does not exist.
	KindObjectNotFound
	// KindUnsupported means the backend does not offer the operation.
	KindUnsupported
	// KindOther covers every other failure, including local I/O errors.
	KindOther
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotConnected:
		return "not_connected"
	case KindObjectNotFound:
		return "not_found"
	case KindUnsupported:
		return "unsupported"
	default:
		return "other"
	}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case stderrors.Is(err, ErrNotConnected):
		return KindNotConnected
	case stderrors.Is(err, ErrObjectNotFound):
		return KindObjectNotFound
	case stderrors.Is(err, ErrUnsupported):
		return KindUnsupported
	default:
		return KindOther
	}
}

// NotConnected returns the error every operation reports before Connect.
func NotConnected(backend string) error {
	return apperrors.NotConnected(backend)
}

// ObjectNotFound reports a missing object, keeping the backend's native error
// as the cause.
func ObjectNotFound(backend, path string, cause error) error {
	return apperrors.NotFound("object", path).
		WithDetail("backend", backend).
		WithCause(cause)
}

// Unsupported reports an operation the backend deliberately does not offer.
func Unsupported(backend, operation, reason string) error {
	return apperrors.Unsupported(operation, reason).WithDetail("backend", backend)
}

// Other wraps an unanticipated backend failure. The cause is kept unchanged
// in the chain.
func Other(backend, operation string, cause error) error {
	return apperrors.ExternalServiceError(backend, cause).WithDetail("operation", operation)
}

// LocalIO wraps a failure reading or writing the local filesystem. The
// *fs.PathError stays reachable through errors.As.
func LocalIO(path string, cause error) error {
	return apperrors.LocalIO(path, cause)
}

// IsLocalIO reports whether err came from the local filesystem rather than
// the backend.
func IsLocalIO(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrCodeLocalIO
}
