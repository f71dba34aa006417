package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reelistapp/reelist/internal/model"
)

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash,
	)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up by email. Returns ErrNotFound when absent.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at
		FROM users WHERE email = $1`, email))
}

// UserByID looks a user up by ID. Returns ErrNotFound when absent.
func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, created_at
		FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// CreateSession stores a session token for a user.
func (s *Store) CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)`,
		token, userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UserBySession resolves a session token to its user, rejecting expired
// sessions. Returns ErrNotFound for unknown or expired tokens.
func (s *Store) UserBySession(ctx context.Context, token string) (model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.display_name, u.password_hash, u.created_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > now()`, token))
}

// DeleteSession removes a session token (logout).
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
