// Package apperror defines the error taxonomy shared by all services.
// Core operations signal exactly one kind per failure; the HTTP layer maps
// kinds to status codes.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of a core operation.
type Kind int

const (
	// KindUnknown is the zero value; errors without a kind map to it.
	KindUnknown Kind = iota
	// KindNotFound means a referenced entity is absent.
	KindNotFound
	// KindConflict means the requested state transition is invalid for the
	// entity's current state (copy not in library, loan already returned,
	// reservation not active, reader inactive).
	KindConflict
	// KindLimitExceeded means the reader is at max_books active loans.
	KindLimitExceeded
	// KindDuplicate means a uniqueness constraint was violated.
	KindDuplicate
	// KindAvailable means a reservation is not needed because a copy of the
	// book is in the library. It is a distinct outcome, not a hard failure.
	KindAvailable
	// KindInvalid means the input was malformed.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindDuplicate:
		return "duplicate"
	case KindAvailable:
		return "available"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error carries a kind, the entity it concerns, and an optional wrapped cause.
type Error struct {
	Kind   Kind
	Entity string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Entity, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Entity, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Entity, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Entity, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that the named entity does not exist.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Msg: entity + " not found"}
}

// Conflict reports an invalid state transition for the named entity.
func Conflict(entity, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Msg: msg}
}

// LimitExceeded reports that a reader has reached the borrowing limit.
func LimitExceeded(entity, msg string) *Error {
	return &Error{Kind: KindLimitExceeded, Entity: entity, Msg: msg}
}

// Duplicate reports a uniqueness-constraint violation on the named entity.
func Duplicate(entity, msg string, err error) *Error {
	return &Error{Kind: KindDuplicate, Entity: entity, Msg: msg, Err: err}
}

// Available reports that a reservation is unnecessary because the book has a
// copy in the library.
func Available(entity, msg string) *Error {
	return &Error{Kind: KindAvailable, Entity: entity, Msg: msg}
}

// Invalid reports malformed input.
func Invalid(entity, msg string) *Error {
	return &Error{Kind: KindInvalid, Entity: entity, Msg: msg}
}

// KindOf extracts the kind from err, unwrapping as needed.
// It returns KindUnknown for nil and for errors without a kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
