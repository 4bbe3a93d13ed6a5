// Package apperr implements the error taxonomy from SPEC_FULL.md §7:
// Input (400), NotFound (404), Transient (5xx), Internal (500). Grounded on
// daglabs-btcd/apiserver/utils.HandlerError, generalized from a single
// HTTP-status-carrying error into a typed taxonomy the HTTP surface maps to
// status codes, so query-engine and indexer code never imports net/http.
package apperr

import (
	"errors"
	"fmt"
)

// Type classifies an error for HTTP-status mapping.
type Type string

// Error type constants, matching SPEC_FULL.md §7's taxonomy.
const (
	TypeInput     Type = "input"
	TypeNotFound  Type = "not_found"
	TypeTransient Type = "transient"
	TypeInternal  Type = "internal"
)

// Error is an error carrying a taxonomy Type, a stable Code for the JSON
// envelope, and a user-facing Message.
type Error struct {
	Type    Type
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Input builds a 400-class validation error.
func Input(code, message string) *Error {
	return &Error{Type: TypeInput, Code: code, Message: message}
}

// NotFound builds a 404-class error.
func NotFound(code, message string) *Error {
	return &Error{Type: TypeNotFound, Code: code, Message: message}
}

// Transient builds a 5xx-class error for store/upstream timeouts and
// connectivity loss, which the caller may retry.
func Transient(code, message string, cause error) *Error {
	return &Error{Type: TypeTransient, Code: code, Message: message, cause: cause}
}

// Internal builds a 500-class error for invariant violations and decode
// failures.
func Internal(code, message string, cause error) *Error {
	return &Error{Type: TypeInternal, Code: code, Message: message, cause: cause}
}

// As extracts an *Error from err, unwrapping causal chains built with
// errors.Wrap/errors.Wrapf (github.com/pkg/errors preserves Unwrap in its
// newer releases; plain fmt.Errorf("%w", ...) chains work too).
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
