// Package store implements PostgreSQL persistence for users, sessions,
// lists, invites, and entries.
//
// Entries are stored document-style: the watch set and the derived
// summary live as JSONB on the entry row and are always written together,
// so a reader can never observe a summary that disagrees with the watch
// set it was computed from.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store provides all persistence operations.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on top of a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema applies the embedded DDL. Statements are idempotent
// (CREATE TABLE IF NOT EXISTS), so this is safe to run on every boot.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaDDL)
	return err
}
