// Package domainerrors carries coded domain errors across layers.
//
// Services return *Error values with a Code from the closed set below; transports
// translate codes into status codes without inspecting messages. Infrastructure
// failures are wrapped with Wrap so the cause survives for logging.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a domain failure class.
type Code string

// Generic codes shared by every module.
const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal_error"

	// CodeUnauthenticated is returned by transports when no valid caller
	// identity is present. CodeUnauthorized covers authenticated callers
	// lacking permission.
	CodeUnauthenticated Code = "unauthenticated"
)

// Issuance outcome codes. This set is closed: every rejected issuance or
// administrative call reports exactly one of these. Storage faults in the
// engine's own state surface as CodeInternal.
const (
	CodeUnauthorized      Code = "unauthorized"
	CodeInvalidAmount     Code = "invalid_amount"
	CodeNotVerified       Code = "not_verified"
	CodeDisasterInactive  Code = "disaster_inactive"
	CodeExceededLimit     Code = "exceeded_limit"
	CodePaused            Code = "paused"
	CodeInvalidDisaster   Code = "invalid_disaster"
	CodeInvalidRecipient  Code = "invalid_recipient"
	CodeInsufficientFunds Code = "insufficient_funds"
	CodeAlreadyClaimed    Code = "already_claimed"
	CodeInvalidExpiration Code = "invalid_expiration"
	CodeMetadataTooLong   Code = "metadata_too_long"
	CodeExternalFailure   Code = "external_failure"
)

// IssuanceCodes lists the outcome codes in declaration order.
var IssuanceCodes = []Code{
	CodeUnauthorized,
	CodeInvalidAmount,
	CodeNotVerified,
	CodeDisasterInactive,
	CodeExceededLimit,
	CodePaused,
	CodeInvalidDisaster,
	CodeInvalidRecipient,
	CodeInsufficientFunds,
	CodeAlreadyClaimed,
	CodeInvalidExpiration,
	CodeMetadataTooLong,
	CodeExternalFailure,
}

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates a coded error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
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

// Is matches another *Error with the same code and message, so tests can
// compare against a freshly constructed value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal
// when the chain carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
