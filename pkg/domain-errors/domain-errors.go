package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"

	// CodeConflict marks a recoverable optimistic-concurrency conflict: the
	// engine rejected a write because the underlying record changed since it
	// was read. Only errors with this code are retried by pkg/retry.
	CodeConflict Code = "conflict"

	// CodeTimeout is produced by pkg/retry when a deadline elapses.
	CodeTimeout Code = "timeout"

	// CodeAbortTimeout means an abort could not complete within its deadline
	// due to persistent concurrency conflicts. Callers may report "try again"
	// instead of a hard failure.
	CodeAbortTimeout Code = "abort_timeout"

	// CodeStepNotReached means a resume request timed out waiting for the
	// target activity to become signalable.
	CodeStepNotReached Code = "step_not_reached"

	// CodeContent marks a deployment descriptor whose declared dependency
	// cannot be satisfied as written (no match or ambiguous match).
	CodeContent Code = "content_error"

	// CodeUnsupportedAction marks an operator action id that is not one of
	// the recognized process actions.
	CodeUnsupportedAction Code = "unsupported_action"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, gateway, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// WrapWithCode wraps an error under a new code even when the cause is itself
// a domain error. Used at escalation boundaries, e.g. a persistent conflict
// becoming an abort timeout.
func WrapWithCode(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
