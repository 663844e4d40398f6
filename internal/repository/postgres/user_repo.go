package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

const userColumns = `
	u.id, u.email, u.username, u.full_name, u.password_hash, u.salt, u.university, u.department,
	u.academic_year, u.student_number, u.club_name, u.club_position, u.club_website, u.status,
	u.created_at, u.updated_at,
	ARRAY(SELECT r.code FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id ORDER BY r.code)
`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var status string
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash, &u.Salt, &u.University, &u.Department,
		&u.AcademicYear, &u.StudentNumber, &u.ClubName, &u.ClubPosition, &u.ClubWebsite, &status,
		&u.CreatedAt, &u.UpdatedAt, pq.Array(&u.Roles),
	)
	if err != nil {
		return nil, err
	}
	u.Status = domain.UserStatus(status)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, username, full_name, password_hash, salt, university, department,
			academic_year, student_number, club_name, club_position, club_website, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Email, u.Username, u.FullName, u.PasswordHash, u.Salt, u.University, u.Department,
		u.AcademicYear, u.StudentNumber, u.ClubName, u.ClubPosition, u.ClubWebsite, string(u.Status),
		u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListByRoleAndStatus(ctx context.Context, role string, status domain.UserStatus) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		INNER JOIN user_roles fr ON fr.user_id = u.id
		INNER JOIN roles fro ON fro.id = fr.role_id
		WHERE fro.code = $1 AND u.status = $2
		ORDER BY u.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, role, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus, reviewedBy string, reviewedAt time.Time) error {
	query := `
		UPDATE users
		SET status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $4
	`
	result, err := r.DB.ExecContext(ctx, query, string(status), reviewedBy, reviewedAt, userID)
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
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, roleID)
	return err
}

type roleRepository struct {
	DB *sql.DB
}

// NewRoleRepository returns a domain.RoleRepository over the seeded roles table.
func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{DB: db}
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	var id string
	err := r.DB.QueryRowContext(ctx, `SELECT id, code FROM roles WHERE code = $1`, code).Scan(&id, &code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return domain.NewRole(id, code), nil
}
