package ir

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	CodeConfiguration  ErrorCode = "configuration"
	CodeDiscovery      ErrorCode = "discovery"
	CodeClassification ErrorCode = "classification"
	CodeRender         ErrorCode = "render"
	CodeCollision      ErrorCode = "collision"
	CodeOutOfDate      ErrorCode = "out_of_date" // Reported by check mode only
	CodeCanceled       ErrorCode = "canceled"
	CodeInternal       ErrorCode = "internal"
)

// Error is a coded generator error.
// Details carry the offending descriptor, field or path so callers can report
// them without parsing the message.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a new coded error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new coded error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error whose message is prefixed onto err.
// A nil err returns nil.
func Wrap(code ErrorCode, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message + ": " + err.Error(), cause: err}
}

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithDetails returns a new Error with the provided map merged into details.
func (e *Error) WithDetails(details map[string]any) *Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &Error{Code: e.Code, Message: e.Message, Details: merged, cause: e.cause}
}

// CodeOf returns the code of the first *Error in err's tree.
// Context cancellation maps to CodeCanceled; anything else uncoded is
// CodeInternal. A nil error has an empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}
	return CodeInternal
}

// Is reports whether err carries the given code anywhere in its tree.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	for _, e := range Flatten(err) {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Flatten returns every *Error found in err's tree, depth first.
// Errors joined with errors.Join are all reported.
func Flatten(err error) []*Error {
	var out []*Error
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if e, ok := err.(*Error); ok {
			out = append(out, e)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

// ExitCode maps an error code to a process exit status.
func (c ErrorCode) ExitCode() int {
	switch c {
	case "":
		return 0
	case CodeConfiguration:
		return 2
	case CodeDiscovery:
		return 3
	case CodeClassification:
		return 4
	case CodeRender:
		return 5
	case CodeCollision:
		return 6
	case CodeCanceled:
		return 130
	default:
		return 1
	}
}
