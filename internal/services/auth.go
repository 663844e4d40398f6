package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"campusevents/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	passwordHasher domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAuthService creates an AuthService with the given repositories, password hasher and token issuer.
func NewAuthService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	passwordHasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		passwordHasher: passwordHasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateSignUp(in *domain.SignUpInput) error {
	if in == nil {
		return fmt.Errorf("%w: sign-up data is required", domain.ErrInvalidInput)
	}
	if in.Role != domain.RoleStudent && in.Role != domain.RoleOrganizer {
		return fmt.Errorf("%w: cannot sign up as %q", domain.ErrInvalidInput, in.Role)
	}
	if !emailRegexp.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	if in.Username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if in.FullName == "" {
		return fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}
	if in.Role == domain.RoleOrganizer && in.ClubName == "" {
		return fmt.Errorf("%w: club name is required for organizers", domain.ErrInvalidInput)
	}
	return nil
}

// SignUp creates the account and assigns its role. Students are approved at once and receive
// a token; organizers wait for a super-admin and get an empty token.
func (s *authService) SignUp(ctx context.Context, in *domain.SignUpInput) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if in != nil {
		in.Email = normalizeEmail(in.Email)
		in.Username = strings.TrimSpace(in.Username)
		in.FullName = strings.TrimSpace(in.FullName)
		in.ClubName = strings.TrimSpace(in.ClubName)
	}
	if err := validateSignUp(in); err != nil {
		return nil, "", err
	}

	salt, err := s.passwordHasher.GenerateSalt()
	if err != nil {
		return nil, "", err
	}
	hash, err := s.passwordHasher.Hash(salt, in.Password)
	if err != nil {
		return nil, "", err
	}

	status := domain.StatusApproved
	if in.Role == domain.RoleOrganizer {
		status = domain.StatusPending
	}
	now := s.now()
	user := domain.NewUser(in.Email, in.Username, in.FullName, hash, salt, status, now, now)
	user.University = strings.TrimSpace(in.University)
	user.Department = in.Department
	user.AcademicYear = in.AcademicYear
	user.StudentNumber = in.StudentNumber
	user.ClubName = in.ClubName
	user.ClubPosition = in.ClubPosition
	user.ClubWebsite = in.ClubWebsite

	role, err := s.roleRepo.GetByCode(ctx, in.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get role %q: %w", in.Role, err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", domain.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, "", fmt.Errorf("failed to assign role: %w", err)
	}
	user.Roles = []string{role.Code}

	if status != domain.StatusApproved {
		s.logger.InfoContext(ctx, "organizer sign-up pending approval", "user_id", user.ID)
		return user, "", nil
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Roles, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.passwordHasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.StatusApproved {
		return "", nil, domain.ErrAccountPending
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Roles, s.tokenExpiry)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
