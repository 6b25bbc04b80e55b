// Package store persists user accounts, listings, and saved templates in
// Postgres. The whole package is optional at runtime: without a database
// URL the server runs in offline mode and these repositories are never
// constructed.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Store bundles the repositories over one connection source.
type Store struct {
	Users     *UserRepo
	Listings  *ListingRepo
	Templates *TemplateRepo
}

// New builds a Store over db.
func New(db DBTX) *Store {
	return &Store{
		Users:     &UserRepo{db: db},
		Listings:  &ListingRepo{db: db},
		Templates: &TemplateRepo{db: db},
	}
}

// schema is applied on startup. Statements are idempotent so repeated
// starts are safe.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
    id             UUID PRIMARY KEY,
    user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title          TEXT NOT NULL,
    price          TEXT NOT NULL DEFAULT '',
    condition      TEXT NOT NULL DEFAULT 'New',
    description    TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL DEFAULT '',
    offer_shipping TEXT NOT NULL DEFAULT 'No',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS listings_user_idx ON listings (user_id, created_at);

CREATE TABLE IF NOT EXISTS saved_templates (
    id               UUID PRIMARY KEY,
    user_id          UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name             TEXT NOT NULL,
    sheet_name       TEXT NOT NULL DEFAULT '',
    header_row_index INT  NOT NULL DEFAULT 0,
    header_rows      JSONB NOT NULL DEFAULT '[]',
    column_headers   JSONB NOT NULL DEFAULT '[]',
    sample_rows      JSONB NOT NULL DEFAULT '[]',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS saved_templates_user_idx ON saved_templates (user_id, created_at);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db DBTX) error {
	_, err := db.Exec(ctx, schema)
	return err
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
