package repository

import (
	"context"
	"errors"
	"time"

	"coworking-reservation-server/internal/domain"

	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	Deactivate(ctx context.Context, id string) error
}

type PostgresUserRepository struct {
	store *PostgresStore
}

func NewUserRepository(store *PostgresStore) *PostgresUserRepository {
	return &PostgresUserRepository{store: store}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, is_active, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.store.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.FirstName, u.LastName, u.Email, u.Password, string(u.Role), u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrEmailExists
		}
		return storageErr("create user", err)
	}
	return nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.store.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.store.conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (r *PostgresUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.store.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, storageErr("check email", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.store.conn(ctx).Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY created_at, id`)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.store.conn(ctx).Exec(ctx, `
		UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active
	`, id, time.Now().UTC())
	if err != nil {
		return storageErr("deactivate user", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("scan user", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}
