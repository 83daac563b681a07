package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToConnect       = errors.New("failed to open db connection")
	ErrEmptyConnectionString = errors.New("empty postgres connection string, use DATABASE_URL env var")
	ErrFailedToParseConfig   = errors.New("failed to parse db config")
	ErrHealthcheckFailed     = errors.New("healthcheck failed, connection is not available")
	ErrFailedToMigrate       = errors.New("failed to apply migrations")
)

// IsNotFoundError detects pgx.ErrNoRows for consistent "not found" handling.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError detects PostgreSQL unique constraint violations
// (SQLSTATE 23505), the final arbiter for concurrent first-login races.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
