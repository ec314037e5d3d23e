// Package serrors implements semantic error kinds. Callers branch on the kind
// of a failure (errors.Is against a Kind sentinel) rather than on concrete
// error types coming from transports or third-party libraries.
package serrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind. It allows distinguishing semantic kinds from ordinary errors.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel) with the provided
// name. Kinds are comparable and can be used with errors.Is/As through the
// serrors.Error wrapper.
func NewKind(name string) Kind { return kind{s: name} }

// Kinds reported by the Reddit client and consumed by the comment poster.
var (
	// ErrRateLimited indicates the platform asked us to slow down. The error
	// usually carries the cooldown, see RetryAfter.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrForbidden indicates the account is not allowed to perform the action (HTTP 403).
	ErrForbidden = NewKind("FORBIDDEN")
	// ErrUnavailable indicates a transient network failure: connection errors, timeouts.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrGone indicates the target can never accept the action (deleted, locked, archived).
	ErrGone = NewKind("GONE")
	// ErrAPI indicates any other API-level failure; retrying later may succeed.
	ErrAPI = NewKind("API")
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = NewKind("NOT_FOUND")
)

// Error represents a semantic error carrying a kind (sentinel), an optional
// wrapped error, an optional message and an optional retry-after hint.
//
// Matching semantics:
//   - errors.Is(err, target) matches either the kind sentinel or the wrapped error.
//   - errors.As(err, target) succeeds for either the kind sentinel or the wrapped error.
//
// Error string formatting:
//   - If both msg and err are set: "<msg>: <err>"
//   - If only msg is set: "<msg>"
//   - If only err is set: "<err>"
//   - If neither set: the kind's Error() string.
type Error struct {
	kind       Kind
	err        error
	msg        string
	retryAfter time.Duration
}

// With constructs a new semantic error with the given kind and a message.
// Use Wrap if you also want to wrap a concrete cause.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a new semantic error with the given kind, wrapping err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// WithRetryAfter attaches the delay the remote side asked us to wait before
// trying again and returns the same error for chaining.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.retryAfter = d

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.err }

// Is matches against either the semantic kind sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	if e.err != nil && errors.Is(e.err, target) {
		return true
	}

	return false
}

// As enables type assertions against either the kind sentinel or the wrapped error.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	if e.err != nil && errors.As(e.err, target) {
		return true
	}

	return false
}

// Kind returns the semantic kind sentinel associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// RetryAfter walks the chain of err and returns the first positive
// retry-after hint attached to a serrors.Error.
func RetryAfter(err error) (time.Duration, bool) {
	for err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return 0, false
		}
		if se.retryAfter > 0 {
			return se.retryAfter, true
		}
		err = se.err
	}

	return 0, false
}
