package ingest

import (
	"context"
	"sync"

	"github.com/zulandar/evodex/internal/logger"
)

// State is the ingestion lifecycle state.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var allStates = []State{StateNotStarted, StateRunning, StateDone, StateFailed}

// Ingester is anything that can run an idempotent ingestion.
type Ingester interface {
	IngestIfNeeded(ctx context.Context, expectedTotal int) (Result, error)
}

// Runner owns the background ingestion lifecycle. Start is idempotent while a
// run is in flight; callers poll State instead of triggering work implicitly.
type Runner struct {
	ingester Ingester
	expected int
	log      *logger.Logger
	metrics  *Metrics

	mu       sync.Mutex
	onFinish func(Result, error)
	state    State
	last     Result
	lastErr  error
	done     chan struct{}
}

// NewRunner creates a Runner in the not-started state.
func NewRunner(ing Ingester, expectedTotal int, log *logger.Logger, metrics *Metrics) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	r := &Runner{
		ingester: ing,
		expected: expectedTotal,
		log:      log,
		metrics:  metrics,
		state:    StateNotStarted,
	}
	metrics.setState(StateNotStarted)
	return r
}

// OnFinish registers fn to run after every finished run, before Wait
// returns. Register it before the first Start.
func (r *Runner) OnFinish(fn func(Result, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFinish = fn
}

// Start launches an ingestion run in the background. It returns false, and
// does nothing, if a run is already in flight.
func (r *Runner) Start(ctx context.Context) bool {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return false
	}
	r.state = StateRunning
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()
	r.metrics.setState(StateRunning)

	go func() {
		defer close(done)
		res, err := r.ingester.IngestIfNeeded(ctx, r.expected)

		next := StateDone
		if err != nil {
			next = StateFailed
			r.log.Error("ingestion failed", "err", err)
		}
		r.mu.Lock()
		r.state = next
		r.last = res
		r.lastErr = err
		hook := r.onFinish
		r.mu.Unlock()
		r.metrics.setState(next)

		if hook != nil {
			hook(res, err)
		}
	}()
	return true
}

// State reports the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastResult returns the outcome of the most recently finished run.
func (r *Runner) LastResult() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.lastErr
}

// Wait blocks until the current run (if any) finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
