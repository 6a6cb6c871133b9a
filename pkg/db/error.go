package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsUndefinedFunctionErr reports whether err means a stored procedure is
// absent from the destination schema. The cache-refresh orchestrator treats
// this as a skippable condition rather than a failure.
func IsUndefinedFunctionErr(err error) bool {
	if err == nil {
		return false
	}

	// PostgreSQL undefined_function
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42883" {
		return true
	}

	// SQLite, used by tests
	if strings.Contains(err.Error(), "no such function") {
		return true
	}

	// MySQL (error code 1305)
	if strings.Contains(err.Error(), "Error 1305") {
		return true
	}

	return false
}
