// Package errors provides the structured error type shared by every catapult
// package. An AppError carries a machine-readable code, a message, a
// retryable hint, optional details and the underlying cause.
//
// Errors compare by code:
//
//	if errors.Is(err, storage.ErrObjectNotFound) { ... }
package errors
