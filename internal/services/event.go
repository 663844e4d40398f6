package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

func NewEventService(eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func validateEventFields(title, location string, category domain.EventCategory, capacity *int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}
	if capacity != nil && *capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	event.Title = strings.TrimSpace(event.Title)
	event.Location = strings.TrimSpace(event.Location)
	if err := validateEventFields(event.Title, event.Location, event.Category, event.Capacity); err != nil {
		return err
	}
	if event.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.SeatsRemaining = nil
	if event.Capacity != nil {
		seats := *event.Capacity
		event.SeatsRemaining = &seats
	}
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListUpcomingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListUpcoming(ctx, s.now(), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOwnerID(ctx, ownerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, principal *domain.Principal, upd *domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.CanBeManagedBy(principal) {
		return nil, domain.ErrForbidden
	}

	title, location, category := event.Title, event.Location, event.Category
	if upd.Title != nil {
		title = *upd.Title
	}
	if upd.Location != nil {
		location = *upd.Location
	}
	if upd.Category != nil {
		category = *upd.Category
	}
	if err := validateEventFields(title, location, category, upd.Capacity); err != nil {
		return nil, err
	}
	if upd.Capacity != nil && !upd.ClearCapacity {
		// The seat counter catches this in strict mode; the count covers best-effort events too.
		count, err := s.registrationRepo.CountForEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("count registrations: %w", err)
		}
		if *upd.Capacity < count {
			return nil, fmt.Errorf("%w: capacity %d is below the %d current registrations", domain.ErrInvalidInput, *upd.Capacity, count)
		}
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string, principal *domain.Principal) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get event: %w", err)
	}
	if !event.CanBeManagedBy(principal) {
		return 0, domain.ErrForbidden
	}

	removed, err := s.registrationRepo.DeleteAllForEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete registrations: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("delete event: %w", err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", eventID, "registrations_removed", removed)
	return removed, nil
}
