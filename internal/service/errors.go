package service

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidDateRange     = errors.New("end must be after start")
	ErrInvalidWorkspace     = errors.New("invalid workspace")
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrWorkspaceUnavailable = errors.New("workspace is not available for the requested time")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrAccessDenied         = errors.New("access denied")
)

// FieldError names the absent field and matches ErrMissingField.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

func missing(field string) error {
	return &FieldError{Field: field}
}
