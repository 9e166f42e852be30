package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToConnect         = errors.New("failed to connect to postgres")
	ErrFailedToParseConfig     = errors.New("failed to parse postgres config")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
	ErrHealthcheckFailed       = errors.New("postgres healthcheck failed")
)

// IsNotFound reports whether err means the query matched no rows.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey reports a unique constraint violation (SQLSTATE 23505),
// e.g. a tenant slug or admin email that is already taken.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports a referential integrity violation
// (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
