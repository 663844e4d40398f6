package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

// CapacityGuard admits a student to an event, enforcing capacity and one registration per
// student. Both modes check the registration count first. In strict mode the seat counter and
// the insert also commit together, so capacity holds under concurrency. In best-effort mode the
// count and the insert are separate steps and concurrent admissions can overshoot capacity.
type CapacityGuard struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	mode             domain.AdmissionMode
	allowPast        bool
	now              func() time.Time
}

func NewCapacityGuard(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, mode domain.AdmissionMode, allowPast bool) *CapacityGuard {
	if !mode.Valid() {
		mode = domain.AdmissionStrict
	}
	return &CapacityGuard{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		mode:             mode,
		allowPast:        allowPast,
		now:              time.Now,
	}
}

// Mode returns the admission mode in effect.
func (g *CapacityGuard) Mode() domain.AdmissionMode {
	return g.mode
}

// Admit registers studentID for eventID and returns the stored registration with the event.
func (g *CapacityGuard) Admit(ctx context.Context, studentID, eventID string) (*domain.Registration, *domain.Event, error) {
	event, err := g.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if !g.allowPast && event.HasOccurred(g.now()) {
		return nil, nil, domain.ErrRegistrationClosed
	}

	if event.HasCapacity() {
		count, err := g.registrationRepo.CountForEvent(ctx, eventID)
		if err != nil {
			return nil, nil, fmt.Errorf("count registrations: %w", err)
		}
		if count >= *event.Capacity {
			return nil, nil, domain.ErrCapacityExceeded
		}
	}

	exists, err := g.registrationRepo.Exists(ctx, studentID, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("check registration: %w", err)
	}
	if exists {
		return nil, nil, domain.ErrAlreadyRegistered
	}

	now := g.now()
	reg := domain.NewRegistration(eventID, studentID, now, now)
	if g.mode == domain.AdmissionStrict {
		err = g.registrationRepo.InsertWithSeat(ctx, reg)
	} else {
		err = g.registrationRepo.Insert(ctx, reg)
	}
	if err != nil {
		switch {
		case domain.IsDuplicateKey(err):
			return nil, nil, domain.ErrAlreadyRegistered
		case errors.Is(err, domain.ErrCapacityExceeded), errors.Is(err, domain.ErrNotFound):
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("insert registration: %w", err)
	}
	return reg, event, nil
}

// Release removes the student's registration and returns its seat. It reports how many rows
// were removed.
func (g *CapacityGuard) Release(ctx context.Context, studentID, eventID string) (int64, error) {
	if g.mode == domain.AdmissionStrict {
		return g.registrationRepo.DeleteWithSeat(ctx, studentID, eventID)
	}
	return g.registrationRepo.Delete(ctx, studentID, eventID)
}
