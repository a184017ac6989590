package repository

import (
	"errors"
	"fmt"
)

// Error kinds shared by the repositories and the auth strategies. Handlers
// translate them to HTTP status codes with errors.Is.
var (
	// ErrValidation is returned for malformed or missing input
	ErrValidation = errors.New("validation error")

	// ErrUnauthenticated is returned for a missing, invalid or expired credential
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound is returned when an id is absent from the caller's scope
	ErrNotFound = errors.New("not found")

	// ErrInvariant is returned when an operation would break a store invariant
	ErrInvariant = errors.New("invariant violation")

	// ErrReference is returned for a task pointing at a project outside the scope
	ErrReference = errors.New("reference error")

	// ErrConflict is returned for a duplicate registration
	ErrConflict = errors.New("conflict")
)

// Error pairs a user-facing message with one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
