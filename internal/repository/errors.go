package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already registered")

	// ErrReservationOverlap is returned when the store itself refuses an
	// overlapping active reservation.
	ErrReservationOverlap = errors.New("reservation overlaps an active reservation")

	// ErrStorage marks infrastructure failures. Callers may retry these.
	ErrStorage = errors.New("storage unavailable")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// StorageError wraps a driver failure with the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
