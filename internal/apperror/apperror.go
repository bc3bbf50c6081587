package apperror

import (
	"errors"
	"strings"
)

// Kind classifies an error for translation into a client response.
type Kind string

const (
	KindInvalidCredential Kind = "INVALID_CREDENTIAL"
	KindAccessDenied      Kind = "ACCESS_DENIED"
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION_FAILURE"
	KindIntegrity         Kind = "INTEGRITY_VIOLATION"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindMalformed         Kind = "MALFORMED_REQUEST"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindInternal          Kind = "INTERNAL"
)

// Error is a domain error tagged with a Kind.
// Two Errors match under errors.Is when their kinds are equal, so a
// package-level sentinel such as product.ErrProductNotFound also matches
// ErrNotFound.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// Authentication
	ErrInvalidCredential = New(KindInvalidCredential, "invalid credential")

	// Authorization
	ErrAccessDenied = New(KindAccessDenied, "access denied")

	// Lookup / persistence
	ErrNotFound           = New(KindNotFound, "resource not found")
	ErrIntegrityViolation = New(KindIntegrity, "referential integrity violation")

	// Lifecycle
	ErrInvalidTransition = New(KindInvalidTransition, "invalid status transition")

	// Transport
	ErrMalformedRequest = New(KindMalformed, "malformed request")
	ErrRateLimited      = New(KindRateLimited, "rate limit exceeded")
)

// Violation is a single failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a payload.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// KindOf resolves the Kind of err, walking the wrap chain.
// Anything unrecognised is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}

	return KindInternal
}
