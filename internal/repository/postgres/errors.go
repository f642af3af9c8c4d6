package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
)

// mapError translates driver errors into domain sentinels. Unknown errors
// are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.ErrDuplicateUser
		case pqForeignKeyViolation, pqInvalidTextRepr:
			// A malformed or dangling id refers to nothing.
			return domain.ErrNotFound
		}
	}
	return err
}
