// Package errors provides a structured error type with stable codes and wrapping
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies errors across services
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeValidation is for malformed input; never retried
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing errors
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeConflict is for editing conflicts and duplicate keys
	ErrorCodeConflict

	// ErrorCodeRateLimited is for provider 429s; retryable
	ErrorCodeRateLimited

	// ErrorCodeTimeout is for external calls exceeding their deadline; retryable
	ErrorCodeTimeout

	// ErrorCodeProvider is for upstream LLM/fetch failures; retryable
	ErrorCodeProvider

	// ErrorCodeUnreachable is for hosts we could not connect to
	ErrorCodeUnreachable

	// ErrorCodeCacheUnavailable is for cache backends failing; callers fail open
	ErrorCodeCacheUnavailable

	// ErrorCodeAggregate is for jobs where every required sub-step failed
	ErrorCodeAggregate

	// ErrorCodeDB is for general database errors
	ErrorCodeDB
)

// String returns the stable snake_case name of the code
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodePanic:
		return "panic"
	case ErrorCodeValidation:
		return "validation"
	case ErrorCodeJSON:
		return "json"
	case ErrorCodeNotFound:
		return "not_found"
	case ErrorCodeConflict:
		return "conflict"
	case ErrorCodeRateLimited:
		return "rate_limited"
	case ErrorCodeTimeout:
		return "timeout"
	case ErrorCodeProvider:
		return "provider"
	case ErrorCodeUnreachable:
		return "unreachable"
	case ErrorCodeCacheUnavailable:
		return "cache_unavailable"
	case ErrorCodeAggregate:
		return "aggregate"
	case ErrorCodeDB:
		return "db"
	}
	return "unknown"
}

// Retryable reports whether the code represents a transient external failure
// that a retry policy may attempt again
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeRateLimited, ErrorCodeTimeout, ErrorCodeProvider, ErrorCodeUnreachable:
		return true
	}
	return false
}

// HTTPStatusCode maps an ErrorCode to an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodeProvider, ErrorCodeUnreachable:
		return http.StatusBadGateway
	case ErrorCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeAggregate, ErrorCodeDB, ErrorCodePanic, ErrorCodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrNotFound is a sentinel not found error for convenience
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is the structured error type
// msg is developer facing; code is machine facing
// field is optional (validation); op is an optional operation tag
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the JSON-serializable form returned by the API
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error into a Wire payload with best-effort mapping
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithField attaches a field to an *Error (copy-on-write)
// If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label (copy-on-write)
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Sugar

// ValidationErrf returns a validation error
func ValidationErrf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Conflictf returns a conflict error
func Conflictf(format string, a ...any) error { return Newf(ErrorCodeConflict, format, a...) }

// RateLimitedf returns a rate limited error
func RateLimitedf(format string, a ...any) error { return Newf(ErrorCodeRateLimited, format, a...) }

// Timeoutf returns a timeout error
func Timeoutf(format string, a ...any) error { return Newf(ErrorCodeTimeout, format, a...) }

// Providerf returns an upstream provider error
func Providerf(format string, a ...any) error { return Newf(ErrorCodeProvider, format, a...) }

// Unreachablef returns an unreachable host error
func Unreachablef(format string, a ...any) error { return Newf(ErrorCodeUnreachable, format, a...) }

// CacheErrf returns a cache unavailable error
func CacheErrf(format string, a ...any) error { return Newf(ErrorCodeCacheUnavailable, format, a...) }

// Aggregatef returns an aggregate failure error
func Aggregatef(format string, a ...any) error { return Newf(ErrorCodeAggregate, format, a...) }

// DBf returns a general database error
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// HTTP bundles status + wire in one shot (nice for handlers)
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}
