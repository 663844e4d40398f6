// Package sqlite implements the storage ports on an embedded SQLite database. It backs local
// development and the concurrency tests, and mirrors the Postgres repositories query for query.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"campusevents/internal/domain"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open opens (creating if needed) the database file at path with foreign keys enforced.
// SQLite allows one writer at a time, so the pool holds a single connection and callers queue on it.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Migrate creates the schema and seeds the fixed roles.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	for _, code := range []string{domain.RoleStudent, domain.RoleOrganizer, domain.RoleSuperAdmin} {
		if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO roles (id, code) VALUES (?, ?)`, uuid.NewString(), code); err != nil {
			return fmt.Errorf("seed role %s: %w", code, err)
		}
	}
	return nil
}

// utc normalizes timestamps before they are stored so text comparisons order correctly.
func utc(t time.Time) time.Time {
	return t.UTC()
}
