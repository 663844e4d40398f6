package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Sentinel errors for registration admission and certificate eligibility.
var (
	ErrAlreadyRegistered   = errors.New("already registered for this event")
	ErrCapacityExceeded    = errors.New("event is full")
	ErrRegistrationClosed  = errors.New("registration is closed for this past event")
	ErrNotRegistered       = errors.New("not registered for this event")
	ErrEventNotYetOccurred = errors.New("event has not yet occurred")
)

// DuplicateKeyError is returned by storage when a unique constraint rejects a write.
// Constraint names the violated constraint when the driver reports it.
type DuplicateKeyError struct {
	Constraint string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("duplicate key violates %s", e.Constraint)
	}
	return "duplicate key"
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// IsDuplicateKey reports whether err (or anything it wraps) is a *DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}
