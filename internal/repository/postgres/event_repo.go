package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

const eventColumns = `id, title, description, date, location, category, image_url, capacity, seats_remaining, owner_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var category string
	var capacity, seats sql.NullInt64
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &category, &e.ImageURL,
		&capacity, &seats, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Category = domain.EventCategory(category)
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	if seats.Valid {
		s := int(seats.Int64)
		e.SeatsRemaining = &s
	}
	return e, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, category, image_url, capacity, seats_remaining, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, string(e.Category), e.ImageURL,
		nullableInt(e.Capacity), nullableInt(e.SeatsRemaining), e.OwnerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: unknown owner", domain.ErrInvalidInput)
		case pqCheckViolation:
			return fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE date >= $1`, from).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE date >= $1
		ORDER BY date ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, from, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1
		ORDER BY date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, upd *domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Category != nil {
		add("category", string(*upd.Category))
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	switch {
	case upd.ClearCapacity:
		setClauses = append(setClauses, "capacity = NULL", "seats_remaining = NULL")
	case upd.Capacity != nil:
		// SET expressions see the old row, so seats shift by the capacity delta. Going from
		// unlimited to limited has no counter yet and starts from the current row count.
		setClauses = append(setClauses,
			fmt.Sprintf("capacity = $%d::int", n),
			fmt.Sprintf(`seats_remaining = CASE
				WHEN capacity IS NULL THEN $%d::int - (SELECT COUNT(*) FROM event_registrations WHERE event_id = events.id)::int
				ELSE seats_remaining + ($%d::int - capacity)
			END`, n, n),
		)
		args = append(args, *upd.Capacity)
		n++
	}
	if n == 1 && !upd.ClearCapacity {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if pqCode(err) == pqCheckViolation {
			return nil, fmt.Errorf("%w: capacity is below the current number of registrations", domain.ErrInvalidInput)
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
