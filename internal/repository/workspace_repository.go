package repository

import (
	"context"
	"errors"
	"fmt"

	"coworking-reservation-server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *domain.Workspace) error
	// GetByID returns the workspace whether or not it is active.
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	ListActive(ctx context.Context) ([]*domain.Workspace, error)
	// GetWithActiveReservations loads an active workspace and its active
	// reservations. Inside a transaction the workspace row stays locked
	// until commit.
	GetWithActiveReservations(ctx context.Context, id string) (*domain.Workspace, error)
	// Deactivate marks an active workspace and all of its reservations inactive.
	Deactivate(ctx context.Context, id string) error
}

type PostgresWorkspaceRepository struct {
	store *PostgresStore
}

func NewWorkspaceRepository(store *PostgresStore) *PostgresWorkspaceRepository {
	return &PostgresWorkspaceRepository{store: store}
}

const workspaceColumns = `id, type, price::text, is_active, created_at`

func (r *PostgresWorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) error {
	row := r.store.conn(ctx).QueryRow(ctx, `
		INSERT INTO workspaces (id, type, price, is_active)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING created_at
	`, ws.ID, ws.Type, ws.Price.String(), ws.Active)

	if err := row.Scan(&ws.CreatedAt); err != nil {
		return storageErr("create workspace", err)
	}
	return nil
}

func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	row := r.store.conn(ctx).QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1`, id)
	return scanWorkspace(row)
}

func (r *PostgresWorkspaceRepository) ListActive(ctx context.Context) ([]*domain.Workspace, error) {
	rows, err := r.store.conn(ctx).Query(ctx, `
		SELECT `+workspaceColumns+` FROM workspaces WHERE is_active ORDER BY created_at, id
	`)
	if err != nil {
		return nil, storageErr("list workspaces", err)
	}
	defer rows.Close()

	workspaces := []*domain.Workspace{}
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list workspaces", err)
	}
	return workspaces, nil
}

func (r *PostgresWorkspaceRepository) GetWithActiveReservations(ctx context.Context, id string) (*domain.Workspace, error) {
	q := r.store.conn(ctx)

	row := q.QueryRow(ctx, `
		SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1 AND is_active FOR UPDATE
	`, id)
	ws, err := scanWorkspace(row)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE workspace_id = $1 AND is_active
		ORDER BY start_at
	`, id)
	if err != nil {
		return nil, storageErr("load workspace reservations", err)
	}
	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, err
	}

	ws.Reservations = reservations
	return ws, nil
}

func (r *PostgresWorkspaceRepository) Deactivate(ctx context.Context, id string) error {
	return r.store.WithinTx(ctx, func(ctx context.Context) error {
		q := r.store.conn(ctx)

		tag, err := q.Exec(ctx, `UPDATE workspaces SET is_active = FALSE WHERE id = $1 AND is_active`, id)
		if err != nil {
			return storageErr("deactivate workspace", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrWorkspaceNotFound
		}

		if _, err := q.Exec(ctx, `
			UPDATE reservations SET is_active = FALSE WHERE workspace_id = $1 AND is_active
		`, id); err != nil {
			return storageErr("deactivate workspace reservations", err)
		}
		return nil
	})
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var (
		ws    domain.Workspace
		price string
	)
	if err := row.Scan(&ws.ID, &ws.Type, &price, &ws.Active, &ws.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, storageErr("scan workspace", err)
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, storageErr("parse workspace price", fmt.Errorf("%q: %w", price, err))
	}
	ws.Price = p
	return &ws, nil
}
