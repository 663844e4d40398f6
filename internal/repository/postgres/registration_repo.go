package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"campusevents/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) CountForEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

func (r *registrationRepository) Exists(ctx context.Context, studentID, eventID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, studentID).Scan(&exists)
	return exists, err
}

const insertRegistrationQuery = `
	INSERT INTO event_registrations (event_id, user_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id
`

func translateInsertError(err error) error {
	if dup := duplicateKeyError(err); dup != nil {
		return dup
	}
	if pqCode(err) == pqForeignKeyViolation {
		return domain.ErrNotFound
	}
	return err
}

const takeSeatIfAnyQuery = `
	UPDATE events
	SET seats_remaining = seats_remaining - 1
	WHERE id = $1 AND seats_remaining > 0
`

// Insert stores the registration without requiring a free seat. A seat is still taken when one
// is left so the counter matches the rows strict admissions see.
func (r *registrationRepository) Insert(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, insertRegistrationQuery, reg.EventID, reg.StudentID, reg.CreatedAt, reg.UpdatedAt).
		Scan(&reg.ID); err != nil {
		return translateInsertError(err)
	}
	if _, err := tx.ExecContext(ctx, takeSeatIfAnyQuery, reg.EventID); err != nil {
		return fmt.Errorf("take seat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *registrationRepository) InsertWithSeat(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// The row lock taken here serializes admissions for the same event until commit.
	res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET seats_remaining = seats_remaining - 1
		WHERE id = $1 AND (capacity IS NULL OR seats_remaining > 0)
	`, reg.EventID)
	if err != nil {
		return fmt.Errorf("take seat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("take seat: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, reg.EventID).Scan(&exists); err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrCapacityExceeded
	}

	if err := tx.QueryRowContext(ctx, insertRegistrationQuery, reg.EventID, reg.StudentID, reg.CreatedAt, reg.UpdatedAt).
		Scan(&reg.ID); err != nil {
		return translateInsertError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Delete removes the registration and gives its seat back, like DeleteWithSeat.
func (r *registrationRepository) Delete(ctx context.Context, studentID, eventID string) (int64, error) {
	return r.DeleteWithSeat(ctx, studentID, eventID)
}

func (r *registrationRepository) DeleteWithSeat(ctx context.Context, studentID, eventID string) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, studentID)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE events
		SET seats_remaining = seats_remaining + 1
		WHERE id = $1 AND seats_remaining IS NOT NULL AND seats_remaining < capacity
	`, eventID); err != nil {
		return 0, fmt.Errorf("return seat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return removed, nil
}

func (r *registrationRepository) DeleteAllForEvent(ctx context.Context, eventID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *registrationRepository) ListForEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, created_at, updated_at
		FROM event_registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID)
}

func (r *registrationRepository) ListForStudent(ctx context.Context, studentID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, created_at, updated_at
		FROM event_registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, studentID)
}

func (r *registrationRepository) list(ctx context.Context, query string, arg string) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.StudentID, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (r *registrationRepository) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT u.id, u.username, u.email, u.university, er.created_at
		FROM event_registrations er
		INNER JOIN users u ON u.id = er.user_id
		WHERE er.event_id = $1
		ORDER BY er.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a := &domain.Attendee{}
		if err := rows.Scan(&a.StudentID, &a.Username, &a.Email, &a.University, &a.RegisteredAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
