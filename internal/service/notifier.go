package service

import (
	"context"

	"coworking-reservation-server/internal/domain"
)

// Notifier delivers confirmations. Implementations must not block on
// delivery; a returned error only means the confirmation was not accepted.
type Notifier interface {
	NotifyReservationConfirmed(ctx context.Context, r *domain.Reservation) error
	NotifyWorkspaceCreated(ctx context.Context, ws *domain.Workspace) error
}

type nopNotifier struct{}

func (nopNotifier) NotifyReservationConfirmed(context.Context, *domain.Reservation) error {
	return nil
}

func (nopNotifier) NotifyWorkspaceCreated(context.Context, *domain.Workspace) error {
	return nil
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}
