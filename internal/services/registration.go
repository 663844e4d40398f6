package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"campusevents/internal/domain"
)

type registrationService struct {
	guard            *CapacityGuard
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService. emailService may be nil.
func NewRegistrationService(
	guard *CapacityGuard,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		guard:            guard,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, studentID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, event, err := s.guard.Admit(ctx, studentID, eventID)
	if err != nil {
		return nil, err
	}
	s.sendConfirmation(ctx, studentID, event)
	return reg, nil
}

// sendConfirmation emails the student about a new registration. Failures are logged only.
func (s *registrationService) sendConfirmation(ctx context.Context, studentID string, event *domain.Event) {
	if s.emailService == nil {
		return
	}
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		s.logger.WarnContext(ctx, "registration confirmation skipped", "student_id", studentID, "event_id", event.ID, "error", err)
		return
	}
	data := &domain.RegistrationConfirmedEmailData{
		Email:         student.Email,
		Name:          student.DisplayName(),
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventLocation: event.Location,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration confirmation failed", "student_id", studentID, "event_id", event.ID, "error", err)
	}
}

func (s *registrationService) Unregister(ctx context.Context, studentID, eventID string) (domain.UnregisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	removed, err := s.guard.Release(ctx, studentID, eventID)
	if err != nil {
		return "", fmt.Errorf("delete registration: %w", err)
	}
	if removed == 0 {
		return domain.NotRegistered, nil
	}
	return domain.Unregistered, nil
}

func (s *registrationService) ListAttendees(ctx context.Context, eventID string, requester *domain.Principal) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.CanBeManagedBy(requester) {
		return nil, domain.ErrForbidden
	}
	attendees, err := s.registrationRepo.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}

func (s *registrationService) ListMyEvents(ctx context.Context, studentID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	seen := make(map[string]struct{}, len(regs))
	events := make([]*domain.Event, 0, len(regs))
	for _, reg := range regs {
		if _, ok := seen[reg.EventID]; ok {
			continue
		}
		seen[reg.EventID] = struct{}{}
		ev, err := s.eventRepo.GetByID(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// deleted between the two reads
				continue
			}
			return nil, fmt.Errorf("get event for registration: %w", err)
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}
