package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"coworking-reservation-server/internal/availability"
	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/metrics"
	"coworking-reservation-server/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ReservationService struct {
	tx           repository.Transactor
	workspaces   repository.WorkspaceRepository
	reservations repository.ReservationRepository
	notifier     Notifier
	locks        *WorkspaceLocks
	logger       zerolog.Logger
}

func NewReservationService(
	tx repository.Transactor,
	workspaces repository.WorkspaceRepository,
	reservations repository.ReservationRepository,
	notifier Notifier,
	locks *WorkspaceLocks,
	logger zerolog.Logger,
) *ReservationService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if locks == nil {
		locks = NewWorkspaceLocks()
	}
	return &ReservationService{
		tx:           tx,
		workspaces:   workspaces,
		reservations: reservations,
		notifier:     notifier,
		locks:        locks,
		logger:       logger.With().Str("component", "reservation_service").Logger(),
	}
}

type CreateReservationInput struct {
	WorkspaceID  string
	CustomerID   string // optional link to the booking user
	CustomerName string
	Start        time.Time
	End          time.Time
}

// CreateReservation validates the request, then checks availability and
// stores the reservation in one transaction while holding the workspace lock.
// The confirmation is sent only after commit and never affects the result.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	res := &domain.Reservation{
		WorkspaceID:   strings.TrimSpace(in.WorkspaceID),
		UserID:        in.CustomerID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		StartDateTime: in.Start,
		EndDateTime:   in.End,
	}

	if err := validateReservation(res); err != nil {
		s.reject(res, err)
		return nil, err
	}

	err := s.withWorkspaceLock(ctx, res.WorkspaceID, func(ctx context.Context) error {
		ws, err := s.workspaces.GetWithActiveReservations(ctx, res.WorkspaceID)
		if err != nil {
			return err
		}

		if !availability.CanReserve(ws.Reservations, res.Interval()) {
			return ErrWorkspaceUnavailable
		}

		res.ID = uuid.New().String()
		res.Active = true
		return s.reservations.Create(ctx, res)
	})
	if err != nil {
		err = translateRepoError(err)
		s.reject(res, err)
		return nil, err
	}

	metrics.IncReservationCreated()
	s.logger.Info().
		Str("reservation_id", res.ID).
		Str("workspace_id", res.WorkspaceID).
		Time("start", res.StartDateTime).
		Time("end", res.EndDateTime).
		Msg("reservation created")

	s.notifyConfirmed(ctx, res)
	return res, nil
}

// CancelReservation soft-deletes an active reservation. Unknown and already
// cancelled ids both yield ErrReservationNotFound.
func (s *ReservationService) CancelReservation(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return missing("reservation_id")
	}

	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return translateRepoError(err)
	}
	if !res.Active {
		return ErrReservationNotFound
	}

	err = s.withWorkspaceLock(ctx, res.WorkspaceID, func(ctx context.Context) error {
		return s.reservations.Deactivate(ctx, id)
	})
	if err != nil {
		return translateRepoError(err)
	}

	metrics.IncReservationCancelled()
	s.logger.Info().Str("reservation_id", id).Str("workspace_id", res.WorkspaceID).Msg("reservation cancelled")
	return nil
}

// GetReservation returns a reservation by id, including cancelled ones.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, missing("reservation_id")
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return res, nil
}

func (s *ReservationService) ListReservations(ctx context.Context) ([]*domain.Reservation, error) {
	return s.reservations.ListActive(ctx)
}

// FindReservationsByWorkspace returns the active reservations of a workspace.
// No reservations is an empty list, not an error.
func (s *ReservationService) FindReservationsByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Reservation, error) {
	return s.reservations.ListActiveByWorkspace(ctx, strings.TrimSpace(workspaceID))
}

// FindReservationsByCustomer returns the active reservations booked under
// name. An empty result is ErrReservationNotFound.
func (s *ReservationService) FindReservationsByCustomer(ctx context.Context, name string) ([]*domain.Reservation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, missing("customer_name")
	}

	reservations, err := s.reservations.ListActiveByCustomerName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, ErrReservationNotFound
	}
	return reservations, nil
}

// FindReservationsByCustomerID lists the caller's own active reservations.
func (s *ReservationService) FindReservationsByCustomerID(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	if userID == "" {
		return nil, missing("user_id")
	}
	return s.reservations.ListActiveByUser(ctx, userID)
}

func (s *ReservationService) withWorkspaceLock(ctx context.Context, workspaceID string, fn func(ctx context.Context) error) error {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()
	return s.tx.WithinTx(ctx, fn)
}

func (s *ReservationService) notifyConfirmed(ctx context.Context, res *domain.Reservation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("reservation_id", res.ID).Msg("notifier panicked")
		}
	}()

	if err := s.notifier.NotifyReservationConfirmed(ctx, res); err != nil {
		s.logger.Warn().Err(err).Str("reservation_id", res.ID).Msg("failed to send reservation confirmation")
	}
}

func (s *ReservationService) reject(res *domain.Reservation, err error) {
	reason := rejectionReason(err)
	metrics.IncReservationRejected(reason)
	s.logger.Debug().
		Str("workspace_id", res.WorkspaceID).
		Str("status", string(domain.ReservationRejected)).
		Str("reason", reason).
		Err(err).
		Msg("reservation rejected")
}

func validateReservation(res *domain.Reservation) error {
	switch {
	case res.WorkspaceID == "":
		return missing("workspace_id")
	case res.CustomerName == "":
		return missing("customer_name")
	case res.StartDateTime.IsZero():
		return missing("start_date_time")
	case res.EndDateTime.IsZero():
		return missing("end_date_time")
	}
	if !res.Interval().Valid() {
		return ErrInvalidDateRange
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, ErrWorkspaceNotFound):
		return "workspace_not_found"
	case errors.Is(err, ErrWorkspaceUnavailable):
		return "workspace_unavailable"
	case errors.Is(err, repository.ErrStorage):
		return "storage"
	default:
		return "other"
	}
}

// translateRepoError maps repository sentinels onto service kinds. Storage
// failures and anything unknown pass through unchanged.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrWorkspaceNotFound):
		return ErrWorkspaceNotFound
	case errors.Is(err, repository.ErrReservationNotFound):
		return ErrReservationNotFound
	case errors.Is(err, repository.ErrReservationOverlap):
		return ErrWorkspaceUnavailable
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailTaken
	default:
		return err
	}
}
