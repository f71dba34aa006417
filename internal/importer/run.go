package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelistapp/reelist/internal/metrics"
	"github.com/reelistapp/reelist/internal/model"
)

// Phase indicates the current stage of an import run.
type Phase string

const (
	PhaseStarting    Phase = "starting"
	PhaseDecoding    Phase = "decoding"
	PhaseReconciling Phase = "reconciling"
	PhaseComplete    Phase = "complete"
	PhaseFailed      Phase = "failed"
)

// Progress is the explicit progress value threaded through OnProgress.
// It is a snapshot, never shared mutable state, so any host (batch job,
// service endpoint, interactive UI) can consume it without coupling.
type Progress struct {
	RunID     string `json:"runId"`
	ListID    string `json:"listId"`
	Phase     Phase  `json:"phase"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Created   int    `json:"created"`
	Merged    int    `json:"merged"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// Percent returns row progress as 0-100.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Processed * 100) / p.Total
}

// RowError describes one failed row. Row is the 1-based position in the
// input file counting the header, so users can find it in their source.
type RowError struct {
	Row     int    `json:"row"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Result is the accumulated outcome of one import run.
type Result struct {
	RunID    string        `json:"runId"`
	ListID   string        `json:"listId"`
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Merged   int           `json:"merged"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Errors   []RowError    `json:"errors"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunSpec describes one import run.
type RunSpec struct {
	RunID      string
	ListID     string
	UserID     string
	Data       []byte
	Mapping    Mapping
	Options    Options
	OnProgress func(Progress)
}

// Runner drives import runs through the decode → normalize → reconcile
// pipeline.
type Runner struct {
	store   Store
	catalog Catalog
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRunner wires a runner. met may be nil.
func NewRunner(store Store, cat Catalog, logger *slog.Logger, met *metrics.Metrics) *Runner {
	return &Runner{
		store:   store,
		catalog: cat,
		logger:  logger,
		metrics: met,
	}
}

// Run executes one import run to completion.
//
// Decode and mapping errors are fatal and returned before any mutation.
// After that, rows are processed strictly in input order, one at a time:
// each row's outcome (success or caught failure) is final before the next
// row starts, which is what prevents two rows from racing to create
// duplicate entries for the same title. Row-level failures are recorded
// in the result and never abort the run.
func (r *Runner) Run(ctx context.Context, spec RunSpec) (*Result, error) {
	startTime := time.Now()

	result := &Result{
		RunID:  spec.RunID,
		ListID: spec.ListID,
		Errors: []RowError{},
	}

	notify := spec.OnProgress
	if notify == nil {
		notify = func(Progress) {}
	}
	progress := Progress{RunID: spec.RunID, ListID: spec.ListID, Phase: PhaseDecoding}
	notify(progress)

	table, err := Decode(spec.Data)
	if err != nil {
		r.metrics.IncRun("failed")
		return nil, err
	}

	if err := spec.Mapping.Validate(table.Headers); err != nil {
		r.metrics.IncRun("failed")
		return nil, err
	}

	entries, err := r.store.EntriesByList(ctx, spec.ListID)
	if err != nil {
		r.metrics.IncRun("failed")
		return nil, fmt.Errorf("load entries: %w", err)
	}

	reconciler := NewReconciler(r.store, r.catalog, r.logger)
	reconciler.metrics = r.metrics

	result.Total = len(table.Rows)
	progress.Phase = PhaseReconciling
	progress.Total = len(table.Rows)
	notify(progress)

	for i, row := range table.Rows {
		intent := NormalizeRow(row, spec.Mapping, spec.Options)
		if intent == nil {
			// Blank title: excluded from the run, not a failure.
			result.Skipped++
			r.metrics.IncRow("skipped")
		} else {
			outcome, err := applyRow(ctx, reconciler, spec.ListID, spec.UserID, &entries, intent)
			switch {
			case err != nil:
				result.Failed++
				result.Errors = append(result.Errors, RowError{
					Row:     i + 2, // 1-based, after the header row
					Title:   intent.Title,
					Message: err.Error(),
				})
				r.metrics.IncRow("failed")
				r.logger.Warn("import row failed",
					"run_id", spec.RunID,
					"row", i+2,
					"title", intent.Title,
					"error", err,
				)
			case outcome == OutcomeCreated:
				result.Created++
				r.metrics.IncRow("created")
			default:
				result.Merged++
				r.metrics.IncRow("merged")
			}
		}

		progress.Processed = i + 1
		progress.Created = result.Created
		progress.Merged = result.Merged
		progress.Failed = result.Failed
		notify(progress)
	}

	result.Duration = time.Since(startTime)
	progress.Phase = PhaseComplete
	notify(progress)

	r.metrics.IncRun("ok")
	r.metrics.ObserveRun(result.Duration)

	r.logger.Info("import run complete",
		"run_id", spec.RunID,
		"list_id", spec.ListID,
		"total", result.Total,
		"created", result.Created,
		"merged", result.Merged,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// applyRow invokes the reconciler with panic containment, so an
// unexpected panic in row handling is caught, counted, and detailed like
// any other row failure instead of killing the run.
func applyRow(ctx context.Context, rec *Reconciler, listID, userID string, entries *[]model.Entry, intent *Intent) (outcome Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
		}
	}()
	return rec.Apply(ctx, listID, userID, entries, intent)
}
