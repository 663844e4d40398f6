package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
)

type adminService struct {
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAdminService creates the organizer onboarding service. emailService may be nil.
func NewAdminService(userRepo domain.UserRepository, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.AdminService {
	return &adminService{
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *adminService) ListOrganizerRequests(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.ListByRoleAndStatus(ctx, domain.RoleOrganizer, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list organizer requests: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// pendingOrganizer returns ErrNotFound unless userID is an organizer awaiting review.
func (s *adminService) pendingOrganizer(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.HasRole(domain.RoleOrganizer) || user.Status != domain.StatusPending {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *adminService) ApproveOrganizer(ctx context.Context, userID, reviewerID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.pendingOrganizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateStatus(ctx, userID, domain.StatusApproved, reviewerID, s.now()); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("approve organizer: %w", err)
	}
	user.Status = domain.StatusApproved
	s.logger.InfoContext(ctx, "organizer approved", "user_id", userID, "reviewer_id", reviewerID)
	s.notify(ctx, user, true)
	return user, nil
}

// RejectOrganizer removes the pending account.
func (s *adminService) RejectOrganizer(ctx context.Context, userID, reviewerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.pendingOrganizer(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reject organizer: %w", err)
	}
	s.logger.InfoContext(ctx, "organizer rejected", "user_id", userID, "reviewer_id", reviewerID)
	s.notify(ctx, user, false)
	return nil
}

func (s *adminService) notify(ctx context.Context, user *domain.User, approved bool) {
	if s.emailService == nil {
		return
	}
	data := &domain.OrganizerDecisionEmailData{
		Email:    user.Email,
		Name:     user.DisplayName(),
		ClubName: user.ClubName,
		Approved: approved,
	}
	if err := s.emailService.SendOrganizerDecision(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "organizer decision email failed", "user_id", user.ID, "error", err)
	}
}
