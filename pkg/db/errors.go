package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation.
// When indexName is given the violation must reference that index, so callers
// can distinguish the dedupe index they rely on from unrelated constraints.
// Falls back to message sniffing for drivers without structured errors
// (sqlite in tests).
func IsUniqueViolation(err error, indexName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != uniqueViolationCode {
			return false
		}
		return indexName == "" || pgErr.ConstraintName == indexName
	}

	msg := err.Error()
	if indexName != "" {
		return strings.Contains(msg, indexName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
