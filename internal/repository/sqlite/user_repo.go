package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campusevents/internal/domain"
)

const userColumns = `
	u.id, u.email, u.username, u.full_name, u.password_hash, u.salt, u.university, u.department,
	u.academic_year, u.student_number, u.club_name, u.club_position, u.club_website, u.status,
	u.created_at, u.updated_at,
	(SELECT group_concat(r.code, ',') FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id) AS roles
`

type userRow struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	Username      string         `db:"username"`
	FullName      string         `db:"full_name"`
	PasswordHash  string         `db:"password_hash"`
	Salt          string         `db:"salt"`
	University    string         `db:"university"`
	Department    string         `db:"department"`
	AcademicYear  string         `db:"academic_year"`
	StudentNumber string         `db:"student_number"`
	ClubName      string         `db:"club_name"`
	ClubPosition  string         `db:"club_position"`
	ClubWebsite   string         `db:"club_website"`
	Status        string         `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	Roles         sql.NullString `db:"roles"`
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:            r.ID,
		Email:         r.Email,
		Username:      r.Username,
		FullName:      r.FullName,
		PasswordHash:  r.PasswordHash,
		Salt:          r.Salt,
		University:    r.University,
		Department:    r.Department,
		AcademicYear:  r.AcademicYear,
		StudentNumber: r.StudentNumber,
		ClubName:      r.ClubName,
		ClubPosition:  r.ClubPosition,
		ClubWebsite:   r.ClubWebsite,
		Status:        domain.UserStatus(r.Status),
		Roles:         []string{},
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Roles.Valid && r.Roles.String != "" {
		u.Roles = strings.Split(r.Roles.String, ",")
		sort.Strings(u.Roles)
	}
	return u
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, full_name, password_hash, salt, university, department,
			academic_year, student_number, club_name, club_position, club_website, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, u.Email, u.Username, u.FullName, u.PasswordHash, u.Salt, u.University, u.Department,
		u.AcademicYear, u.StudentNumber, u.ClubName, u.ClubPosition, u.ClubWebsite, string(u.Status),
		utc(u.CreatedAt), utc(u.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	u.ID = id
	return nil
}

func (r *userRepository) get(ctx context.Context, where string, arg string) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users u WHERE `+where, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `u.email = ?`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `u.id = ?`, id)
}

func (r *userRepository) ListByRoleAndStatus(ctx context.Context, role string, status domain.UserStatus) ([]*domain.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+userColumns+`
		FROM users u
		INNER JOIN user_roles fr ON fr.user_id = u.id
		INNER JOIN roles fro ON fro.id = fr.role_id
		WHERE fro.code = ? AND u.status = ?
		ORDER BY u.created_at ASC
	`, role, string(status))
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus, reviewedBy string, reviewedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET status = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ?
	`, string(status), reviewedBy, utc(reviewedAt), utc(reviewedAt), userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID)
	return err
}

type roleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) domain.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	role := &domain.Role{}
	if err := r.db.GetContext(ctx, role, `SELECT id, code FROM roles WHERE code = ?`, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}
