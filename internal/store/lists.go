package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reelistapp/reelist/internal/model"
)

// CreateList inserts a list and its owner membership in one transaction.
func (s *Store) CreateList(ctx context.Context, l model.List) (model.List, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.List{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO lists (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		l.ID, l.Name, l.OwnerID,
	)
	if err := row.Scan(&l.CreatedAt); err != nil {
		return model.List{}, fmt.Errorf("create list: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO list_members (list_id, user_id, role)
		VALUES ($1, $2, $3)`,
		l.ID, l.OwnerID, model.RoleOwner,
	)
	if err != nil {
		return model.List{}, fmt.Errorf("add owner member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.List{}, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}

// ListByID fetches one list. Returns ErrNotFound when absent.
func (s *Store) ListByID(ctx context.Context, id string) (model.List, error) {
	var l model.List
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at
		FROM lists WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.List{}, ErrNotFound
	}
	if err != nil {
		return model.List{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// ListsForUser returns all lists the user is a member of.
func (s *Store) ListsForUser(ctx context.Context, userID string) ([]model.List, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.name, l.owner_id, l.created_at
		FROM lists l JOIN list_members m ON m.list_id = l.id
		WHERE m.user_id = $1
		ORDER BY l.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("lists for user: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// MemberRole returns the user's role on a list, or ErrNotFound when the
// user is not a member.
func (s *Store) MemberRole(ctx context.Context, listID, userID string) (model.Role, error) {
	var role model.Role
	err := s.pool.QueryRow(ctx, `
		SELECT role FROM list_members
		WHERE list_id = $1 AND user_id = $2`, listID, userID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("member role: %w", err)
	}
	return role, nil
}

// CreateInvite stores a single-use invite code for a list.
func (s *Store) CreateInvite(ctx context.Context, inv model.Invite) (model.Invite, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO invites (code, list_id, role, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		inv.Code, inv.ListID, inv.Role, inv.CreatedBy, inv.ExpiresAt,
	)
	if err := row.Scan(&inv.CreatedAt); err != nil {
		return model.Invite{}, fmt.Errorf("create invite: %w", err)
	}
	return inv, nil
}

// RedeemInvite consumes an invite code and adds the user as a member
// with the invite's role. The code must be unused and unexpired; both
// checks and the membership insert happen in one transaction.
func (s *Store) RedeemInvite(ctx context.Context, code, userID string) (model.Invite, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Invite{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var inv model.Invite
	var usedBy *string
	err = tx.QueryRow(ctx, `
		SELECT code, list_id, role, created_by, created_at, expires_at, used_by
		FROM invites WHERE code = $1
		FOR UPDATE`, code,
	).Scan(&inv.Code, &inv.ListID, &inv.Role, &inv.CreatedBy, &inv.CreatedAt, &inv.ExpiresAt, &usedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Invite{}, ErrNotFound
	}
	if err != nil {
		return model.Invite{}, fmt.Errorf("get invite: %w", err)
	}

	if usedBy != nil {
		return model.Invite{}, fmt.Errorf("invite already used")
	}
	if time.Now().After(inv.ExpiresAt) {
		return model.Invite{}, fmt.Errorf("invite expired")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO list_members (list_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (list_id, user_id) DO NOTHING`,
		inv.ListID, userID, inv.Role,
	)
	if err != nil {
		return model.Invite{}, fmt.Errorf("add member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invites SET used_by = $2, used_at = now()
		WHERE code = $1`, code, userID,
	)
	if err != nil {
		return model.Invite{}, fmt.Errorf("mark invite used: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Invite{}, fmt.Errorf("commit: %w", err)
	}

	inv.UsedBy = userID
	return inv, nil
}
