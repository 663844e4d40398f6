package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campusevents/internal/domain"
)

type registrationRow struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type registrationRepository struct {
	db *sqlx.DB
}

func NewRegistrationRepository(db *sqlx.DB) domain.RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) CountForEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM event_registrations WHERE event_id = ?`, eventID)
	return n, err
}

func (r *registrationRepository) Exists(ctx context.Context, studentID, eventID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM event_registrations WHERE event_id = ? AND user_id = ?)`, eventID, studentID)
	return exists, err
}

const insertRegistrationQuery = `
	INSERT INTO event_registrations (id, event_id, user_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
`

func translateInsertError(err error) error {
	if dup := duplicateKeyError(err); dup != nil {
		return dup
	}
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

const takeSeatIfAnyQuery = `
	UPDATE events
	SET seats_remaining = seats_remaining - 1
	WHERE id = ? AND seats_remaining > 0
`

// Insert stores the registration without requiring a free seat, taking one when any is left.
func (r *registrationRepository) Insert(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertRegistrationQuery, id, reg.EventID, reg.StudentID, utc(reg.CreatedAt), utc(reg.UpdatedAt)); err != nil {
		return translateInsertError(err)
	}
	if _, err := tx.ExecContext(ctx, takeSeatIfAnyQuery, reg.EventID); err != nil {
		return fmt.Errorf("take seat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	reg.ID = id
	return nil
}

func (r *registrationRepository) InsertWithSeat(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE events
		SET seats_remaining = seats_remaining - 1
		WHERE id = ? AND (capacity IS NULL OR seats_remaining > 0)
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
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM events WHERE id = ?)`, reg.EventID); err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrCapacityExceeded
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertRegistrationQuery, id, reg.EventID, reg.StudentID, utc(reg.CreatedAt), utc(reg.UpdatedAt)); err != nil {
		return translateInsertError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	reg.ID = id
	return nil
}

// Delete removes the registration and gives its seat back.
func (r *registrationRepository) Delete(ctx context.Context, studentID, eventID string) (int64, error) {
	return r.DeleteWithSeat(ctx, studentID, eventID)
}

func (r *registrationRepository) DeleteWithSeat(ctx context.Context, studentID, eventID string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = ? AND user_id = ?`, eventID, studentID)
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
		WHERE id = ? AND seats_remaining IS NOT NULL AND seats_remaining < capacity
	`, eventID); err != nil {
		return 0, fmt.Errorf("return seat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return removed, nil
}

func (r *registrationRepository) DeleteAllForEvent(ctx context.Context, eventID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *registrationRepository) ListForEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return r.list(ctx, `
		SELECT id, event_id, user_id, created_at, updated_at
		FROM event_registrations
		WHERE event_id = ?
		ORDER BY created_at ASC
	`, eventID)
}

func (r *registrationRepository) ListForStudent(ctx context.Context, studentID string) ([]*domain.Registration, error) {
	return r.list(ctx, `
		SELECT id, event_id, user_id, created_at, updated_at
		FROM event_registrations
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, studentID)
}

func (r *registrationRepository) list(ctx context.Context, query, arg string) ([]*domain.Registration, error) {
	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, err
	}
	regs := make([]*domain.Registration, 0, len(rows))
	for _, row := range rows {
		regs = append(regs, &domain.Registration{
			ID:        row.ID,
			EventID:   row.EventID,
			StudentID: row.UserID,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return regs, nil
}

type attendeeRow struct {
	StudentID    string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	University   string    `db:"university"`
	RegisteredAt time.Time `db:"created_at"`
}

func (r *registrationRepository) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	var rows []attendeeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.username, u.email, u.university, er.created_at
		FROM event_registrations er
		INNER JOIN users u ON u.id = er.user_id
		WHERE er.event_id = ?
		ORDER BY er.created_at ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	attendees := make([]*domain.Attendee, 0, len(rows))
	for _, row := range rows {
		attendees = append(attendees, &domain.Attendee{
			StudentID:    row.StudentID,
			Username:     row.Username,
			Email:        row.Email,
			University:   row.University,
			RegisteredAt: row.RegisteredAt,
		})
	}
	return attendees, nil
}
