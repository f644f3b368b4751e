package adapter

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapPostgresError translates a database/sql or pgx failure into the
// adapter error taxonomy. Errors that are not PostgreSQL errors at all
// (dropped connections, dial failures, deadlines) are transient.
func mapPostgresError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: %w", op, classifyPgError(pgErr), err)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}

// classifyPgError maps a *pgconn.PgError to a sentinel based on the
// PostgreSQL error code.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html for the
// full list of PostgreSQL error codes.
//
// Transient:
//   - Class 08: connection exceptions
//   - Class 40: transaction rollback, serialization failure, deadlock
//   - Class 53: insufficient resources
//   - Class 57: operator intervention (57P03 cannot connect now, shutdowns)
//
// Fatal:
//   - Class 28: invalid authorization specification
//   - 42501   : insufficient privilege
//
// Permanent:
//   - Class 22: data exceptions
//   - Class 23: integrity constraint violations
//   - 42P01   : undefined table
//
// Any other code is an internal server error, retried on the next cycle.
func classifyPgError(pgErr *pgconn.PgError) error {
	code := pgErr.Code

	switch {
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code),
		pgerrcode.IsInsufficientResources(code),
		pgerrcode.IsOperatorIntervention(code):
		return ErrTransient

	case pgerrcode.IsInvalidAuthorizationSpecification(code):
		return ErrUnauthorized
	case code == pgerrcode.InsufficientPrivilege:
		return ErrForbidden

	case pgerrcode.IsDataException(code),
		pgerrcode.IsIntegrityConstraintViolation(code):
		return ErrBadRequest
	case code == pgerrcode.UndefinedTable:
		return ErrNotFound
	}

	return ErrInternalServerError
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
