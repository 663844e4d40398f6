package sqlite

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"campusevents/internal/domain"
)

func sqliteCode(err error) int {
	var sErr *msqlite.Error
	if errors.As(err, &sErr) {
		return sErr.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}

func isCheckViolation(err error) bool {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "CHECK constraint failed")
	}
	return false
}

// duplicateKeyError wraps a unique violation into the domain's typed error, or returns nil.
func duplicateKeyError(err error) error {
	if !isUniqueViolation(err) {
		return nil
	}
	constraint := ""
	if _, after, ok := strings.Cut(err.Error(), "UNIQUE constraint failed: "); ok {
		constraint, _, _ = strings.Cut(after, " (")
	}
	return &domain.DuplicateKeyError{Constraint: constraint, Err: err}
}
