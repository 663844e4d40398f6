package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"campusevents/internal/domain"
)

func TestRegistrationRepository_Insert(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
		wantDup bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO event_registrations \(event_id, user_id, created_at, updated_at\)`).
					WithArgs("ev-1", "stu-1", ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
				mock.ExpectExec(`UPDATE events\s+SET seats_remaining = seats_remaining - 1\s+WHERE id = \$1 AND seats_remaining > 0`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantID: "reg-1",
		},
		{
			name: "unique violation",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO event_registrations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "event_registrations_event_id_user_id_key"})
				mock.ExpectRollback()
			},
			wantDup: true,
		},
		{
			name: "event gone",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO event_registrations`).
					WillReturnError(&pq.Error{Code: "23503"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			reg := domain.NewRegistration("ev-1", "stu-1", ts, ts)
			err = NewRegistrationRepository(db).Insert(ctx, reg)
			switch {
			case tt.wantDup:
				require.True(t, domain.IsDuplicateKey(err))
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.wantID, reg.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_InsertWithSeat(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
		wantDup bool
	}{
		{
			name: "seat taken and row inserted",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events\s+SET seats_remaining = seats_remaining - 1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO event_registrations`).
					WithArgs("ev-1", "stu-1", ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))
				mock.ExpectCommit()
			},
		},
		{
			name: "no seat left",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM events WHERE id = \$1\)`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name: "event missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "duplicate rolls the seat back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO event_registrations`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantDup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			reg := domain.NewRegistration("ev-1", "stu-1", ts, ts)
			err = NewRegistrationRepository(db).InsertWithSeat(ctx, reg)
			switch {
			case tt.wantDup:
				require.True(t, domain.IsDuplicateKey(err))
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				require.Equal(t, "reg-1", reg.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_DeleteWithSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("removed and seat returned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_registrations WHERE event_id = \$1 AND user_id = \$2`).
			WithArgs("ev-1", "stu-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`SET seats_remaining = seats_remaining \+ 1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		n, err := NewRegistrationRepository(db).DeleteWithSeat(ctx, "stu-1", "ev-1")
		require.NoError(t, err)
		require.Equal(t, int64(1), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to remove", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_registrations`).
			WithArgs("ev-1", "stu-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		n, err := NewRegistrationRepository(db).DeleteWithSeat(ctx, "stu-1", "ev-1")
		require.NoError(t, err)
		require.Equal(t, int64(0), n)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM event_registrations WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET seats_remaining = seats_remaining \+ 1`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := NewRegistrationRepository(db).Delete(ctx, "stu-1", "ev-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_CountAndExists(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_registrations WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM event_registrations`).
		WithArgs("ev-1", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewRegistrationRepository(db)
	n, err := repo.CountForEvent(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, 7, n)
	ok, err := repo.Exists(ctx, "stu-1", "ev-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_ListForEvent(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantLen int
		wantErr bool
	}{
		{
			name: "two rows",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at", "updated_at"}).
					AddRow("reg-1", "ev-1", "stu-1", ts, ts).
					AddRow("reg-2", "ev-1", "stu-2", ts.Add(time.Minute), ts.Add(time.Minute))
				mock.ExpectQuery(`FROM event_registrations\s+WHERE event_id = \$1`).WithArgs("ev-1").WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "empty",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM event_registrations`).WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at", "updated_at"}))
			},
			wantLen: 0,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM event_registrations`).WithArgs("ev-1").WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewRegistrationRepository(db).ListForEvent(ctx, "ev-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got, tt.wantLen)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_ListAttendees(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INNER JOIN users u ON u.id = er.user_id`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "university", "created_at"}).
			AddRow("stu-1", "alice", "alice@uni.edu", "State U", ts))

	got, err := NewRegistrationRepository(db).ListAttendees(ctx, "ev-1")
	require.NoError(t, err)
	require.Equal(t, []*domain.Attendee{{
		StudentID: "stu-1", Username: "alice", Email: "alice@uni.edu", University: "State U", RegisteredAt: ts,
	}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
