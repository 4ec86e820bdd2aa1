package repository

import (
	"context"
)

// The exclusion constraint is the final guard against double booking: two
// active rows for one workspace may never hold intersecting [start, end) ranges.
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workspaces (
	id TEXT PRIMARY KEY,
	type VARCHAR(50) NOT NULL CHECK (length(btrim(type)) > 0),
	price NUMERIC(12, 2) NOT NULL CHECK (price > 0),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reservations (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL REFERENCES workspaces(id),
	user_id TEXT REFERENCES users(id),
	customer_name TEXT NOT NULL CHECK (length(btrim(customer_name)) > 0),
	start_at TIMESTAMPTZ NOT NULL,
	end_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	CONSTRAINT reservations_valid_range CHECK (start_at < end_at),
	CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
		workspace_id WITH =,
		tstzrange(start_at, end_at, '[)') WITH &&
	) WHERE (is_active)
);

CREATE INDEX IF NOT EXISTS idx_reservations_workspace ON reservations(workspace_id) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_reservations_customer ON reservations(customer_name) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations(user_id) WHERE is_active;
`

// EnsureSchema creates the tables on an empty database and is a no-op otherwise.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return storageErr("ensure schema", err)
}
