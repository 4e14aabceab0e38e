// Package apperr defines the error taxonomy shared by all services.
// Every domain rule violation is classified so the HTTP layer can map it
// to a response code without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindUnknown marks errors outside the domain taxonomy (infrastructure
	// failures); they are logged and surfaced as generic failures.
	KindUnknown Kind = iota

	// KindBadRequest covers invalid hierarchy placement, cyclic parent
	// assignment, disallowed status transitions, duplicate keys, and
	// malformed input.
	KindBadRequest

	// KindNotFound covers absent referenced entities.
	KindNotFound

	// KindForbidden covers ownership/authorization violations.
	KindForbidden

	// KindConflict covers optimistic-concurrency token mismatches.
	KindConflict

	// KindUnauthorized covers a missing or invalid actor claim.
	KindUnauthorized
)

// Error is a classified domain error. Sentinel errors are declared with
// New so errors.Is comparisons against the sentinel keep working.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the classification of e.
func (e *Error) Kind() Kind {
	return e.kind
}

// New creates a classified sentinel error.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates a classified error with a formatted message. Use it when
// the message must identify the entities involved.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// KindOf walks the error chain and returns the kind of the first
// classified error found, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is classified as NotFound.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsBadRequest reports whether err is classified as BadRequest.
func IsBadRequest(err error) bool {
	return KindOf(err) == KindBadRequest
}

// IsForbidden reports whether err is classified as Forbidden.
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}

// IsConflict reports whether err is classified as Conflict.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
