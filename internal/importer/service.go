package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reelistapp/reelist/internal/metrics"
)

// resultRetention is how long a finished run stays queryable.
const resultRetention = 10 * time.Minute

// Service manages asynchronous import runs: it starts them in the
// background, fans progress out to listeners, and keeps results around
// long enough for the client to fetch them.
type Service struct {
	runner  *Runner
	limiter *RunLimiter
	logger  *slog.Logger

	mu   sync.RWMutex
	runs map[string]*activeRun
}

type activeRun struct {
	ID       string
	ListID   string
	Progress Progress
	Result   *Result
	Done     chan struct{}

	listenerMu sync.Mutex
	listeners  []chan Progress
	closed     bool
}

// NewService creates an import service backed by the given runner.
func NewService(runner *Runner, maxConcurrent int, maxWait time.Duration, logger *slog.Logger) *Service {
	return &Service{
		runner:  runner,
		limiter: NewRunLimiter(maxConcurrent, maxWait),
		logger:  logger,
		runs:    make(map[string]*activeRun),
	}
}

// NewServiceFor is a convenience constructor for hosts that only have
// the capabilities, not a prebuilt runner.
func NewServiceFor(store Store, cat Catalog, met *metrics.Metrics, maxConcurrent int, maxWait time.Duration, logger *slog.Logger) *Service {
	return NewService(NewRunner(store, cat, logger, met), maxConcurrent, maxWait, logger)
}

// Inspect decodes the file and guesses a column mapping without touching
// any persisted state. It backs the mapping-review phase of the UI.
func (s *Service) Inspect(data []byte) (*Inspection, error) {
	return Inspect(data)
}

// StartRun begins an asynchronous import and returns its run ID.
// Returns ErrTooManyRuns when the concurrency limit is reached and no
// slot frees up within the wait window.
//
// The run itself is given a background context on purpose: once started
// it proceeds to completion, and a caller that goes away can still fetch
// the result. There is no mid-run cancellation.
func (s *Service) StartRun(ctx context.Context, spec RunSpec) (string, error) {
	// Cheap pre-check: title binding. Full header validation happens
	// inside the run once the file is decoded.
	if spec.Mapping[FieldTitle] == "" {
		return "", &MappingError{Reason: "title field is not bound to a column"}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	runID := uuid.New().String()
	spec.RunID = runID

	run := &activeRun{
		ID:     runID,
		ListID: spec.ListID,
		Progress: Progress{
			RunID:  runID,
			ListID: spec.ListID,
			Phase:  PhaseStarting,
		},
		Done: make(chan struct{}),
	}

	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	callerProgress := spec.OnProgress
	spec.OnProgress = func(p Progress) {
		run.setProgress(p)
		if callerProgress != nil {
			callerProgress(p)
		}
	}

	go func() {
		defer s.limiter.Release()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in import run",
					"run_id", runID,
					"panic", r,
				)
				s.finish(run, &Result{
					RunID:  runID,
					ListID: spec.ListID,
					Error:  fmt.Sprintf("internal error: %v", r),
				}, PhaseFailed)
			}
		}()

		result, err := s.runner.Run(context.Background(), spec)
		if err != nil {
			s.finish(run, &Result{
				RunID:  runID,
				ListID: spec.ListID,
				Error:  err.Error(),
			}, PhaseFailed)
			return
		}
		s.finish(run, result, PhaseComplete)
	}()

	return runID, nil
}

// SubscribeProgress returns a channel of progress updates for a run.
// The channel closes when the run finishes.
func (s *Service) SubscribeProgress(runID string) (<-chan Progress, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound
	}

	ch := make(chan Progress, 16)

	run.listenerMu.Lock()
	if run.closed {
		// Already finished: replay the final snapshot and close.
		ch <- run.Progress
		close(ch)
	} else {
		run.listeners = append(run.listeners, ch)
	}
	run.listenerMu.Unlock()

	return ch, nil
}

// RunProgress returns the current progress snapshot for a run.
func (s *Service) RunProgress(runID string) (Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return Progress{}, ErrRunNotFound
	}

	run.listenerMu.Lock()
	p := run.Progress
	run.listenerMu.Unlock()
	return p, nil
}

// RunResult returns the result of a finished run, or an error if the run
// is unknown or still in flight.
func (s *Service) RunResult(runID string) (*Result, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound
	}

	select {
	case <-run.Done:
	default:
		return nil, fmt.Errorf("run %s still in progress", runID)
	}

	return run.Result, nil
}

// ActiveRuns returns the number of runs currently executing.
func (s *Service) ActiveRuns() int {
	return s.limiter.Active()
}

// WaitForRuns blocks until all active runs complete, for shutdown.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// finish records the result, notifies and closes listeners, and schedules
// the run record for cleanup.
func (s *Service) finish(run *activeRun, result *Result, phase Phase) {
	run.listenerMu.Lock()
	run.Result = result
	run.Progress.Phase = phase
	run.Progress.Created = result.Created
	run.Progress.Merged = result.Merged
	run.Progress.Failed = result.Failed
	run.Progress.Error = result.Error
	final := run.Progress

	for _, ch := range run.listeners {
		select {
		case ch <- final:
		default:
		}
		close(ch)
	}
	run.listeners = nil
	run.closed = true
	run.listenerMu.Unlock()

	close(run.Done)

	time.AfterFunc(resultRetention, func() {
		s.mu.Lock()
		delete(s.runs, run.ID)
		s.mu.Unlock()
	})
}

func (r *activeRun) setProgress(p Progress) {
	r.listenerMu.Lock()
	r.Progress = p
	for _, ch := range r.listeners {
		select {
		case ch <- p:
		default:
			// Slow listener: drop the update, the next one supersedes it.
		}
	}
	r.listenerMu.Unlock()
}
