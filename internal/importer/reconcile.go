package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reelistapp/reelist/internal/catalog"
	"github.com/reelistapp/reelist/internal/metrics"
	"github.com/reelistapp/reelist/internal/model"
)

// Store is the persistence capability the reconciler consumes. Each
// method may fail with a generic persistence error; such failures are
// caught at the row boundary and never abort a run.
type Store interface {
	EntriesByList(ctx context.Context, listID string) ([]model.Entry, error)
	CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error)
	UpdateEntryWatches(ctx context.Context, entryID string, watches []model.Watch, meta model.EntryMeta) error
	UpdateEntryRating(ctx context.Context, entryID string, rating model.Rating) error
}

// Catalog is the external metadata capability. Lookups may fail or time
// out; the reconciler degrades to a stub entry in that case.
type Catalog interface {
	SearchTitle(ctx context.Context, query string, mediaType model.MediaType) ([]catalog.Candidate, error)
	GetDetails(ctx context.Context, mediaType model.MediaType, id int64) (*catalog.Details, error)
}

// Outcome classifies what the reconciler did with one intent.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeMerged  Outcome = "merged"
)

// Reconciler merges parsed row intents into a list's existing entries.
// The dedup key is the case-insensitive title, evaluated against the
// entries already loaded for the list; rows for a title the run just
// created therefore merge onto that same entry.
type Reconciler struct {
	store   Store
	catalog Catalog
	clock   func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewReconciler wires a reconciler. catalog may be nil, in which case
// every new title becomes a stub entry.
func NewReconciler(store Store, cat Catalog, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:   store,
		catalog: cat,
		clock:   time.Now,
		logger:  logger,
	}
}

// Apply merges one intent into the list. entries is the working set of
// already loaded entries for the list; Apply mutates matched entries in
// place and appends newly created ones so later rows in the same run see
// them. Any returned error is a row-level persistence failure.
func (r *Reconciler) Apply(ctx context.Context, listID, userID string, entries *[]model.Entry, intent *Intent) (Outcome, error) {
	status := InferStatus(intent.Status, intent.StartDate, intent.EndDate)

	if match := findByTitle(*entries, intent.Title); match != nil {
		if err := r.mergeExisting(ctx, match, intent, status, userID); err != nil {
			return "", err
		}
		return OutcomeMerged, nil
	}

	created, err := r.createNew(ctx, listID, userID, intent, status)
	if err != nil {
		return "", err
	}
	*entries = append(*entries, *created)
	return OutcomeCreated, nil
}

// mergeExisting applies an intent to an entry the list already has. No
// external lookup happens on this path. Watches only change when the row
// carries a dated, non-planned viewing; a rating always overwrites the
// entry's rating (idempotently).
func (r *Reconciler) mergeExisting(ctx context.Context, entry *model.Entry, intent *Intent, status model.Status, userID string) error {
	if status != model.StatusPlanned && intent.StartDate != "" {
		if existing := findWatchByStart(entry.Watches, intent.StartDate); existing != nil {
			existing.Status = status
			if intent.EndDate != "" {
				existing.EndDate = intent.EndDate
			}
			if intent.Platform != "" {
				existing.Platform = intent.Platform
			}
			if intent.Notes != "" {
				existing.Notes = intent.Notes
			}
		} else {
			entry.Watches = append(entry.Watches, model.Watch{
				ID:        uuid.New().String(),
				Status:    status,
				StartDate: intent.StartDate,
				EndDate:   intent.EndDate,
				Platform:  intent.Platform,
				Notes:     intent.Notes,
				UserID:    userID,
				CreatedAt: r.clock(),
			})
		}

		entry.Meta = ComputeEntryMeta(entry.Watches)
		if err := r.store.UpdateEntryWatches(ctx, entry.ID, entry.Watches, entry.Meta); err != nil {
			return fmt.Errorf("update watches: %w", err)
		}
	}

	if intent.Rating != "" && model.ValidRating(intent.Rating) {
		entry.Rating = intent.Rating
		if err := r.store.UpdateEntryRating(ctx, entry.ID, intent.Rating); err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
	}

	return nil
}

// createNew builds and persists an entry for a title the list does not
// have yet, enriched from the catalog when possible. Enrichment failure
// never fails the row: the entry is created as a minimal stub instead.
func (r *Reconciler) createNew(ctx context.Context, listID, userID string, intent *Intent, status model.Status) (*model.Entry, error) {
	now := r.clock()

	entry := model.Entry{
		ID:        uuid.New().String(),
		ListID:    listID,
		MediaType: intent.MediaType,
		Title:     intent.Title,
		Rating:    intent.Rating,
		Stub:      true,
		AddedBy:   userID,
		CreatedAt: now,
	}

	if details := r.lookup(ctx, intent); details != nil {
		entry.CatalogID = details.ID
		entry.Title = details.Title
		entry.Year = details.Year
		entry.Overview = details.Overview
		entry.PosterURL = details.PosterURL
		entry.Stub = false
	}

	if status != model.StatusPlanned {
		start, end := intent.StartDate, intent.EndDate
		if start == "" && end == "" {
			today := now.Format(isoDate)
			start, end = today, today
		}
		entry.Watches = []model.Watch{{
			ID:        uuid.New().String(),
			Status:    status,
			StartDate: start,
			EndDate:   end,
			Platform:  intent.Platform,
			Notes:     intent.Notes,
			UserID:    userID,
			CreatedAt: now,
		}}
	}

	entry.Meta = ComputeEntryMeta(entry.Watches)

	created, err := r.store.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	return &created, nil
}

// lookup resolves catalog details for an intent, preferring an explicit
// catalog ID over a title search. Any failure, including a timeout, is
// logged and reported as nil so the caller falls back to a stub.
func (r *Reconciler) lookup(ctx context.Context, intent *Intent) *catalog.Details {
	if r.catalog == nil {
		return nil
	}

	id := intent.CatalogID
	if id == 0 {
		candidates, err := r.catalog.SearchTitle(ctx, intent.Title, intent.MediaType)
		if err != nil {
			r.metrics.IncLookup("error")
			r.logger.Warn("catalog search failed, creating stub entry",
				"title", intent.Title,
				"error", err,
			)
			return nil
		}
		if len(candidates) == 0 {
			r.metrics.IncLookup("miss")
			return nil
		}
		id = candidates[0].ID
	}

	details, err := r.catalog.GetDetails(ctx, intent.MediaType, id)
	if err != nil {
		r.metrics.IncLookup("error")
		r.logger.Warn("catalog details failed, creating stub entry",
			"title", intent.Title,
			"catalog_id", id,
			"error", err,
		)
		return nil
	}

	r.metrics.IncLookup("hit")
	return details
}

// findByTitle locates an entry whose title matches case-insensitively.
func findByTitle(entries []model.Entry, title string) *model.Entry {
	needle := strings.TrimSpace(title)
	for i := range entries {
		if strings.EqualFold(strings.TrimSpace(entries[i].Title), needle) {
			return &entries[i]
		}
	}
	return nil
}

func findWatchByStart(watches []model.Watch, startDate string) *model.Watch {
	for i := range watches {
		if watches[i].StartDate == startDate {
			return &watches[i]
		}
	}
	return nil
}
