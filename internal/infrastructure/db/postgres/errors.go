package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02" // malformed $n::uuid argument
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isUniqueViolation(err error) bool { return isPgError(err, uniqueViolation) }

func isForeignKeyViolation(err error) bool { return isPgError(err, foreignKeyViolation) }

func isInvalidText(err error) bool { return isPgError(err, invalidTextRepresentation) }
