// Package errors defines the domain error taxonomy. Handlers map each
// Kind to a distinct HTTP status so clients can tell "retry won't help"
// (BadRequest/Forbidden/NotFound) from "retry may help" (Conflict) from
// "re-authenticate" (Unauthorized).
package errors

import "errors"

// Kind classifies a domain error.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindBadRequest
	KindConflict
)

// Error is a domain error with a stable kind and a user-visible message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// E builds a domain error.
func E(kind Kind, msg string) *Error { return &Error{kind: kind, msg: msg} }

// Wrap builds a domain error around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

func Unauthorized(msg string) *Error { return E(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return E(KindForbidden, msg) }
func NotFound(msg string) *Error     { return E(KindNotFound, msg) }
func BadRequest(msg string) *Error   { return E(KindBadRequest, msg) }
func Conflict(msg string) *Error     { return E(KindConflict, msg) }

// KindOf extracts the Kind from err, walking wrapped errors.
// Non-domain errors report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
