// Package apperror defines the failure taxonomy shared by every HTTP-facing
// package and classifies arbitrary errors into a status, code and message.
package apperror

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind is the abstract failure category.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindInvalidCredential
	KindCredentialExpired
	KindConflict
)

// String returns the log-friendly name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failure"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindCredentialExpired:
		return "credential_expired"
	case KindConflict:
		return "conflict"
	default:
		return "server_failure"
	}
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated, KindInvalidCredential, KindCredentialExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// External error codes.
const (
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeDuplicateValue      = "DUPLICATE_VALUE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeServer              = "SERVER_ERROR"
	CodeForbidden           = "FORBIDDEN"
	CodeUnauthorized        = "NOT_AUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeMissingRefreshToken = "MISSING_REFRESH_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
)

// GenericServerMessage replaces 5xx messages in production responses.
const GenericServerMessage = "Server Error"

// Error is a classified failure. Cause is kept for logging and never rendered in production.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
	stack   []uintptr
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors with the same kind and code so sentinels compare with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// Status returns the HTTP status for the error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Stack renders the call stack captured when the error was wrapped, if any.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	frames := runtime.CallersFrames(e.stack)
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// New declares a classified error, typically a package-level sentinel.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause and captures the caller stack.
func (e *Error) Wrap(cause error) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		stack:   callers(),
	}
}

// WithMessage copies the error with a different message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// Validation builds a VALIDATION_ERROR failure.
func Validation(message string) *Error {
	return New(KindValidation, CodeValidation, message)
}

// MalformedID reports an identifier that cannot address any resource.
func MalformedID(raw string) *Error {
	return New(KindNotFound, CodeResourceNotFound, fmt.Sprintf("Resource not found with id of %s", raw))
}

// Server wraps an unclassified failure.
func Server(cause error) *Error {
	return &Error{
		Kind:    KindServer,
		Code:    CodeServer,
		Message: GenericServerMessage,
		Cause:   cause,
		stack:   callers(),
	}
}

func callers() []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}
