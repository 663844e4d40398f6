package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"campusevents/internal/domain"
)

const eventColumns = `id, title, description, date, location, category, image_url, capacity, seats_remaining, owner_id, created_at, updated_at`

type eventRow struct {
	ID             string        `db:"id"`
	Title          string        `db:"title"`
	Description    string        `db:"description"`
	Date           time.Time     `db:"date"`
	Location       string        `db:"location"`
	Category       string        `db:"category"`
	ImageURL       string        `db:"image_url"`
	Capacity       sql.NullInt64 `db:"capacity"`
	SeatsRemaining sql.NullInt64 `db:"seats_remaining"`
	OwnerID        string        `db:"owner_id"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (r eventRow) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Location:    r.Location,
		Category:    domain.EventCategory(r.Category),
		ImageURL:    r.ImageURL,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Capacity.Valid {
		c := int(r.Capacity.Int64)
		e.Capacity = &c
	}
	if r.SeatsRemaining.Valid {
		s := int(r.SeatsRemaining.Int64)
		e.SeatsRemaining = &s
	}
	return e
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) domain.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, date, location, category, image_url, capacity, seats_remaining, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, e.Title, e.Description, utc(e.Date), e.Location, string(e.Category), e.ImageURL,
		nullableInt(e.Capacity), nullableInt(e.SeatsRemaining), e.OwnerID, utc(e.CreatedAt), utc(e.UpdatedAt))
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: unknown owner", domain.ErrInvalidInput)
		case isCheckViolation(err):
			return fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
		}
		return err
	}
	e.ID = id
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events WHERE date >= ?`, utc(from)); err != nil {
		return nil, 0, err
	}
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+eventColumns+`
		FROM events
		WHERE date >= ?
		ORDER BY date ASC, id ASC
		LIMIT ? OFFSET ?
	`, utc(from), params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return toEvents(rows), total, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+eventColumns+` FROM events WHERE owner_id = ? ORDER BY date ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	return toEvents(rows), nil
}

func toEvents(rows []eventRow) []*domain.Event {
	events := make([]*domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events
}

func (r *eventRepository) Update(ctx context.Context, eventID string, upd *domain.EventUpdate) (*domain.Event, error) {
	if upd.Empty() {
		return r.GetByID(ctx, eventID)
	}
	setClauses := []string{"updated_at = ?"}
	args := []any{utc(time.Now())}
	add := func(column string, value any) {
		setClauses = append(setClauses, column+" = ?")
		args = append(args, value)
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Date != nil {
		add("date", utc(*upd.Date))
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
		// Same old-row semantics as Postgres: seats move by the capacity delta.
		setClauses = append(setClauses,
			"capacity = ?",
			`seats_remaining = CASE
				WHEN capacity IS NULL THEN ? - (SELECT COUNT(*) FROM event_registrations WHERE event_id = events.id)
				ELSE seats_remaining + (? - capacity)
			END`,
		)
		args = append(args, *upd.Capacity, *upd.Capacity, *upd.Capacity)
	}
	args = append(args, eventID)

	query := `UPDATE events SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: capacity is below the current number of registrations", domain.ErrInvalidInput)
		}
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, eventID)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
