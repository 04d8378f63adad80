package common

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the recoverable failure modes of the core. Callers
// branch with errors.Is; services wrap these with context via fmt.Errorf("%w").
var (
	ErrNotFound            = errors.New("not found")
	ErrTenantMismatch      = errors.New("referenced entity belongs to a different tenant")
	ErrTenantCancelled     = errors.New("tenant is cancelled")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrInvalidEnum         = errors.New("value outside allowed set")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrSeatLimitExceeded   = errors.New("subscription seat limit exceeded")
	ErrFeatureNotInPlan    = errors.New("feature not included in plan")
	ErrSubscriptionExpired = errors.New("subscription expired")
	ErrTokenInvalid        = errors.New("password reset token invalid")
	ErrTokenExpired        = errors.New("password reset token expired")
	ErrTokenAlreadyUsed    = errors.New("password reset token already used")
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTenantSuspended     = errors.New("tenant is suspended")
)

// Postgres SQLSTATE codes surfaced as recoverable errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapPgError converts a store-level constraint failure into the error
// taxonomy. The database is the authoritative final check even when the
// application already validated, so unique/FK/check violations must come back
// as recoverable errors rather than opaque driver errors.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if pgErr.ConstraintName == "users_email_key" {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, pgErr.Detail)
		}
		return fmt.Errorf("%w: unique (%s)", ErrConstraintViolation, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: foreign key (%s)", ErrConstraintViolation, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%w: check (%s)", ErrInvalidEnum, pgErr.ConstraintName)
	}
	return err
}
