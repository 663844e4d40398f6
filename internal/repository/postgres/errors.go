package postgres

import (
	"errors"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

// Postgres SQLSTATE codes translated by the repositories.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// duplicateKeyError wraps a unique violation into the domain's typed error, or returns nil.
func duplicateKeyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return &domain.DuplicateKeyError{Constraint: pqErr.Constraint, Err: err}
	}
	return nil
}
