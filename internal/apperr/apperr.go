package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can map it to a status
// code and envelope without inspecting message text.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
	KindCapacityExceeded
	KindInternal
)

// Error is a typed domain failure. Details carries per-field
// validation errors when Kind is KindValidation.
type Error struct {
	Kind    Kind
	Message string
	// RetryAfterSeconds is set for rate-limited failures.
	RetryAfterSeconds int
	Details           map[string][]string
	cause             error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a typed failure with a caller-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause to a typed failure.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation creates a validation failure with a field-error map.
func Validation(message string, details map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// RateLimited creates a throttling failure advertising a retry window.
func RateLimited(retryAfterSeconds int) *Error {
	msg := "Trop de requetes."
	if retryAfterSeconds > 0 {
		msg = fmt.Sprintf("Trop de requetes. Reessayer dans %d secondes", retryAfterSeconds)
	}
	return &Error{Kind: KindRateLimited, Message: msg, RetryAfterSeconds: retryAfterSeconds}
}

// NotFound is the generic missing-resource failure. Cross-tenant
// lookups use this too, so callers cannot probe other clinics' data.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Ressource introuvable"}
}

// KindOf extracts the Kind from an error chain, defaulting to
// KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the typed failure in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
