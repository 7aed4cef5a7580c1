package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"biblios/internal/apperror"
)

const uniqueViolationCode = "23505"

// isUniqueViolation detects a unique-constraint violation from either driver.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}

	return false
}

// mapGetErr converts sql.ErrNoRows into the entity's not-found error.
func mapGetErr(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(entity)
	}
	return err
}

// mapInsertErr converts a unique violation into the entity's duplicate error.
func mapInsertErr(err error, entity, msg string) error {
	if isUniqueViolation(err) {
		return apperror.Duplicate(entity, msg, err)
	}
	return err
}
