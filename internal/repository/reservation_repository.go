package repository

import (
	"context"
	"errors"

	"coworking-reservation-server/internal/domain"

	"github.com/jackc/pgx/v5"
)

type ReservationRepository interface {
	// Create stores r and fills in its CreatedAt.
	Create(ctx context.Context, r *domain.Reservation) error
	// GetByID returns the reservation whether or not it is active.
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	ListActive(ctx context.Context) ([]*domain.Reservation, error)
	ListAll(ctx context.Context) ([]*domain.Reservation, error)
	ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Reservation, error)
	ListActiveByCustomerName(ctx context.Context, name string) ([]*domain.Reservation, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Reservation, error)
	// Deactivate cancels an active reservation. Missing and already
	// cancelled ids both yield ErrReservationNotFound.
	Deactivate(ctx context.Context, id string) error
}

type PostgresReservationRepository struct {
	store *PostgresStore
}

func NewReservationRepository(store *PostgresStore) *PostgresReservationRepository {
	return &PostgresReservationRepository{store: store}
}

const reservationColumns = `id, workspace_id, COALESCE(user_id, ''), customer_name, start_at, end_at, created_at, is_active`

func (r *PostgresReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	var userID *string
	if res.UserID != "" {
		userID = &res.UserID
	}

	row := r.store.conn(ctx).QueryRow(ctx, `
		INSERT INTO reservations (id, workspace_id, user_id, customer_name, start_at, end_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, res.ID, res.WorkspaceID, userID, res.CustomerName, res.StartDateTime, res.EndDateTime, res.Active)

	if err := row.Scan(&res.CreatedAt); err != nil {
		if pgCode(err) == pgExclusionViolation {
			return ErrReservationOverlap
		}
		return storageErr("create reservation", err)
	}
	return nil
}

func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.store.conn(ctx).QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

func (r *PostgresReservationRepository) ListActive(ctx context.Context) ([]*domain.Reservation, error) {
	return r.list(ctx, `WHERE is_active ORDER BY start_at, id`)
}

func (r *PostgresReservationRepository) ListAll(ctx context.Context) ([]*domain.Reservation, error) {
	return r.list(ctx, `ORDER BY created_at, id`)
}

func (r *PostgresReservationRepository) ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Reservation, error) {
	return r.list(ctx, `WHERE workspace_id = $1 AND is_active ORDER BY start_at`, workspaceID)
}

func (r *PostgresReservationRepository) ListActiveByCustomerName(ctx context.Context, name string) ([]*domain.Reservation, error) {
	return r.list(ctx, `WHERE customer_name = $1 AND is_active ORDER BY start_at`, name)
}

func (r *PostgresReservationRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	return r.list(ctx, `WHERE user_id = $1 AND is_active ORDER BY start_at`, userID)
}

func (r *PostgresReservationRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.store.conn(ctx).Exec(ctx, `UPDATE reservations SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return storageErr("cancel reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *PostgresReservationRepository) list(ctx context.Context, where string, args ...any) ([]*domain.Reservation, error) {
	rows, err := r.store.conn(ctx).Query(ctx, `SELECT `+reservationColumns+` FROM reservations `+where, args...)
	if err != nil {
		return nil, storageErr("list reservations", err)
	}
	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*domain.Reservation, error) {
	defer rows.Close()

	reservations := []*domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list reservations", err)
	}
	return reservations, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.WorkspaceID,
		&res.UserID,
		&res.CustomerName,
		&res.StartDateTime,
		&res.EndDateTime,
		&res.CreatedAt,
		&res.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, storageErr("scan reservation", err)
	}
	return &res, nil
}
