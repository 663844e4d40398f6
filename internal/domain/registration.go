package domain

import (
	"context"
	"time"
)

// Registration is a student's admission to an event. At most one exists per (student, event).
// swagger:model Registration
type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, studentID string, createdAt, updatedAt time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		StudentID: studentID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Attendee is a registered student as shown on an event roster.
// swagger:model Attendee
type Attendee struct {
	StudentID    string    `json:"student_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	University   string    `json:"university"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UnregisterResult reports the outcome of an unregister call. Neither outcome is an error.
type UnregisterResult string

const (
	Unregistered  UnregisterResult = "unregistered"
	NotRegistered UnregisterResult = "not_registered"
)

// AdmissionMode selects how capacity is enforced.
type AdmissionMode string

const (
	// AdmissionStrict decrements the event's seat counter and inserts the registration in one
	// transaction, so capacity is never exceeded.
	AdmissionStrict AdmissionMode = "strict"
	// AdmissionBestEffort counts registrations before inserting. Concurrent admissions racing for
	// the last seat can overshoot capacity by at most the number of racers.
	AdmissionBestEffort AdmissionMode = "best_effort"
)

// Valid reports whether m is a known admission mode.
func (m AdmissionMode) Valid() bool {
	return m == AdmissionStrict || m == AdmissionBestEffort
}

// RegistrationRepository is the registration ledger. The (event, student) pair is unique at the
// storage level; inserts that violate it return *DuplicateKeyError.
type RegistrationRepository interface {
	CountForEvent(ctx context.Context, eventID string) (int, error)
	Exists(ctx context.Context, studentID, eventID string) (bool, error)
	// Insert stores reg and sets its ID. Returns *DuplicateKeyError on a uniqueness violation
	// and ErrNotFound when the event no longer exists.
	Insert(ctx context.Context, reg *Registration) error
	// InsertWithSeat atomically takes one seat from the event and stores reg. Returns
	// ErrCapacityExceeded when no seat is left; on *DuplicateKeyError the seat is not taken.
	InsertWithSeat(ctx context.Context, reg *Registration) error
	// Delete removes the (student, event) row and returns the number of rows removed (0 or 1).
	Delete(ctx context.Context, studentID, eventID string) (int64, error)
	// DeleteWithSeat removes the row and returns its seat to the event in one transaction.
	DeleteWithSeat(ctx context.Context, studentID, eventID string) (int64, error)
	DeleteAllForEvent(ctx context.Context, eventID string) (int64, error)
	ListForEvent(ctx context.Context, eventID string) ([]*Registration, error)
	ListForStudent(ctx context.Context, studentID string) ([]*Registration, error)
	// ListAttendees joins the event's registrations with their students, oldest first.
	ListAttendees(ctx context.Context, eventID string) ([]*Attendee, error)
}

// RegistrationService defines student registration operations and attendee rosters.
type RegistrationService interface {
	Register(ctx context.Context, studentID, eventID string) (*Registration, error)
	Unregister(ctx context.Context, studentID, eventID string) (UnregisterResult, error)
	// ListAttendees is restricted to the event owner and super-admins.
	ListAttendees(ctx context.Context, eventID string, requester *Principal) ([]*Attendee, error)
	// ListMyEvents returns the student's events ordered by event date ascending.
	ListMyEvents(ctx context.Context, studentID string) ([]*Event, error)
}
