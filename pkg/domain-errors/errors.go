// Package domainerrors provides coded errors for the ledger core.
//
// Every failure an entry point can surface carries exactly one stable Code so
// callers and tests branch on the kind, never on message text. Services
// construct these directly for precondition violations and wrap store
// sentinels into them at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable identifier for an error kind.
type Code string

const (
	// Authorization and input kinds raised by individual entry points.
	CodeUnauthorized          Code = "unauthorized"
	CodeInvalidAddress        Code = "invalid_address"
	CodeZeroAmount            Code = "zero_amount"
	CodeBlacklisted           Code = "blacklisted"
	CodeCapExceeded           Code = "cap_exceeded"
	CodeInsufficientBalance   Code = "insufficient_balance"
	CodeInsufficientAllowance Code = "insufficient_allowance"

	// Ambient kinds shared by all modules.
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInvalidState Code = "invalid_state"
	CodeInternal     Code = "internal"
)

// Error is a domain error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// New constructs a domain error with the given code.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability in handlers.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer responds
// with. Kept here so every handler renders failures identically.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidAddress, CodeZeroAmount, CodeBadRequest:
		return http.StatusBadRequest
	case CodeBlacklisted:
		return http.StatusForbidden
	case CodeCapExceeded, CodeInsufficientBalance, CodeInsufficientAllowance:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
