package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email or username already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountPending     = errors.New("organizer account is still pending approval")
)

// Role codes stored in the roles table.
const (
	RoleStudent    = "student"
	RoleOrganizer  = "organizer"
	RoleSuperAdmin = "super_admin"
)

// UserStatus tracks organizer onboarding. Students and super-admins are always approved.
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	FullName      string     `json:"full_name"`
	PasswordHash  string     `json:"-"`
	Salt          string     `json:"-"`
	University    string     `json:"university"`
	Department    string     `json:"department,omitempty"`
	AcademicYear  string     `json:"academic_year,omitempty"`
	StudentNumber string     `json:"student_number,omitempty"`
	ClubName      string     `json:"club_name,omitempty"`
	ClubPosition  string     `json:"club_position,omitempty"`
	ClubWebsite   string     `json:"club_website,omitempty"`
	Status        UserStatus `json:"status"`
	Roles         []string   `json:"roles"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, username, fullName, passwordHash, salt string, status UserStatus, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Salt:         salt,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// HasRole reports whether the user holds the given role code.
func (u *User) HasRole(code string) bool {
	return containsRole(u.Roles, code)
}

// Role represents an application role (student, organizer, super_admin)
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// NewRole returns a new Role with the given id and code.
func NewRole(id, code string) *Role {
	return &Role{ID: id, Code: code}
}

// Principal is the authenticated caller attached to a request by the auth middleware.
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal holds the given role code.
func (p *Principal) HasRole(code string) bool {
	return p != nil && containsRole(p.Roles, code)
}

// IsSuperAdmin reports whether the principal is a super-admin.
func (p *Principal) IsSuperAdmin() bool {
	return p.HasRole(RoleSuperAdmin)
}

func containsRole(roles []string, code string) bool {
	for _, r := range roles {
		if r == code {
			return true
		}
	}
	return false
}

// SignUpInput holds the data submitted by a student or organizer sign-up.
type SignUpInput struct {
	Role          string
	Email         string
	Username      string
	FullName      string
	Password      string
	University    string
	Department    string
	AcademicYear  string
	StudentNumber string
	ClubName      string
	ClubPosition  string
	ClubWebsite   string
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// ListByRoleAndStatus returns users holding role with the given status, oldest first.
	ListByRoleAndStatus(ctx context.Context, role string, status UserStatus) ([]*User, error)
	UpdateStatus(ctx context.Context, userID string, status UserStatus, reviewedBy string, reviewedAt time.Time) error
	Delete(ctx context.Context, id string) error
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RoleRepository defines the interface for role storage
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*Role, error)
}

// AuthService defines sign-up, login, and profile lookup.
type AuthService interface {
	// SignUp creates a student (approved, token returned) or organizer (pending, empty token).
	SignUp(ctx context.Context, in *SignUpInput) (*User, string, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AdminService defines the super-admin organizer onboarding workflow.
type AdminService interface {
	ListOrganizerRequests(ctx context.Context) ([]*User, error)
	ApproveOrganizer(ctx context.Context, userID, reviewerID string) (*User, error)
	RejectOrganizer(ctx context.Context, userID, reviewerID string) error
}
