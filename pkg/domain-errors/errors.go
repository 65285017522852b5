// Package domainerrors defines the error taxonomy shared by services and the
// HTTP layer. Services attach a Code to every error they return; the transport
// layer maps codes to HTTP statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	// CodeBadRequest marks malformed or missing input.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing entity (tour, user, ticket).
	CodeNotFound Code = "not_found"
	// CodeConflict marks a duplicate submission or unique-key clash.
	CodeConflict Code = "conflict"
	// CodeInsufficient marks a purchase exceeding the available spots.
	// The storefront reports this as a 400, matching the public API contract.
	CodeInsufficient Code = "insufficient_spots"
	// CodeInvariantViolation marks model-level invariant breaches
	// (e.g. available spots above capacity).
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unclassified persistence or collaborator failures.
	CodeInternal Code = "internal_error"
)

// Error is a classified domain error. Message is safe to show to API callers
// except for CodeInternal, which the HTTP layer replaces with a fixed message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains and logs.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode, used at call sites that branch on a
// single code.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors so nothing leaks through the boundary unmapped.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from err. Unclassified errors
// yield a fixed generic message, never internal detail.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInsufficient:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
