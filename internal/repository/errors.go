package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrDuplicateKey is returned when a write collides with a unique key
	// (municipal_id or assessment_roll_number).
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrMissingReference is returned when a property references a
	// municipality that does not exist.
	ErrMissingReference = errors.New("referenced municipality does not exist")
)

// translate maps constraint violations onto repository errors, leaving
// everything else untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateKey
		case pgForeignKeyViolation:
			return ErrMissingReference
		}
	}
	return err
}

// parseRate converts a NUMERIC column read as text.
func parseRate(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
