package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reelistapp/reelist/internal/model"
)

const entryColumns = `id, list_id, catalog_id, media_type, title, year,
	overview, poster_url, rating, stub, watches, meta, added_by, created_at`

// EntriesByList returns all entries on a list, oldest first.
func (s *Store) EntriesByList(ctx context.Context, listID string) ([]model.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries WHERE list_id = $1
		ORDER BY created_at`, listID)
	if err != nil {
		return nil, fmt.Errorf("entries by list: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EntryByID fetches one entry. Returns ErrNotFound when absent.
func (s *Store) EntryByID(ctx context.Context, id string) (model.Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Entry{}, ErrNotFound
	}
	return e, err
}

// CreateEntry inserts an entry with its full watch set and derived
// summary, returning the persisted form.
func (s *Store) CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	watches, meta, err := marshalDoc(e)
	if err != nil {
		return model.Entry{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO entries (id, list_id, catalog_id, media_type, title,
			year, overview, poster_url, rating, stub, watches, meta, added_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`,
		e.ID, e.ListID, e.CatalogID, e.MediaType, e.Title,
		e.Year, e.Overview, e.PosterURL, e.Rating, e.Stub, watches, meta, e.AddedBy,
	)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return model.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	return e, nil
}

// UpdateEntryWatches replaces an entry's watch set together with the
// summary derived from it. The two always travel as one write.
func (s *Store) UpdateEntryWatches(ctx context.Context, entryID string, watches []model.Watch, meta model.EntryMeta) error {
	if watches == nil {
		watches = []model.Watch{}
	}
	watchesJSON, err := json.Marshal(watches)
	if err != nil {
		return fmt.Errorf("marshal watches: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE entries SET watches = $2, meta = $3 WHERE id = $1`,
		entryID, watchesJSON, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("update watches: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateEntryRating overwrites the entry's rating.
func (s *Store) UpdateEntryRating(ctx context.Context, entryID string, rating model.Rating) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE entries SET rating = $2 WHERE id = $1`, entryID, rating)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEntry removes an entry and its watch history.
func (s *Store) DeleteEntry(ctx context.Context, entryID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalDoc(e model.Entry) (watches, meta []byte, err error) {
	w := e.Watches
	if w == nil {
		w = []model.Watch{}
	}
	watches, err = json.Marshal(w)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal watches: %w", err)
	}
	meta, err = json.Marshal(e.Meta)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal meta: %w", err)
	}
	return watches, meta, nil
}

func scanEntry(row pgx.Row) (model.Entry, error) {
	var (
		e           model.Entry
		watchesJSON []byte
		metaJSON    []byte
	)
	err := row.Scan(&e.ID, &e.ListID, &e.CatalogID, &e.MediaType, &e.Title,
		&e.Year, &e.Overview, &e.PosterURL, &e.Rating, &e.Stub,
		&watchesJSON, &metaJSON, &e.AddedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Entry{}, pgx.ErrNoRows
		}
		return model.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	if err := json.Unmarshal(watchesJSON, &e.Watches); err != nil {
		return model.Entry{}, fmt.Errorf("unmarshal watches: %w", err)
	}
	if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
		return model.Entry{}, fmt.Errorf("unmarshal meta: %w", err)
	}
	return e, nil
}
