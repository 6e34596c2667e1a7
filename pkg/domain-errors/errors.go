// Package domainerrors defines the coded error type used across service
// boundaries. Services create or wrap errors with a Code; transports translate
// codes into protocol responses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for callers and transports.
type Code string

const (
	// CodeBadRequest covers malformed or semantically invalid requests.
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput covers values rejected at a trust boundary (IDs, roles).
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound means the referenced vault, release, or envelope is absent.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized means the caller is not authenticated.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden is the access-denied outcome. Responses carrying it must stay
	// opaque: they never confirm whether the target exists or who participates.
	CodeForbidden Code = "forbidden"
	// CodeConflict covers duplicate participants and concurrent active releases.
	CodeConflict Code = "conflict"
	// CodeInvalidTransition is returned for release state-machine edges not in
	// the transition table. A domain outcome, never retried.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeChainIntegrity signals audit-chain verification failure. Fatal to trust
	// in the affected history; must be surfaced distinctly from ordinary errors.
	CodeChainIntegrity Code = "chain_integrity_violation"
	// CodeTimeout means an operation exceeded its deadline; outcome is unknown.
	CodeTimeout Code = "timeout"
	// CodeUnavailable covers transient storage or broker failures. The only code
	// eligible for caller-directed retry.
	CodeUnavailable Code = "unavailable"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error carries a Code alongside a message and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (anywhere in its chain) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for readability at call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// ToHTTPStatus maps a code to its HTTP status. Unknown codes map to 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeChainIntegrity:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
