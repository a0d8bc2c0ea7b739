package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// gatedIngester blocks every run until release is closed.
type gatedIngester struct {
	release chan struct{}
	calls   int32
	err     error
}

func (g *gatedIngester) IngestIfNeeded(ctx context.Context, expected int) (Result, error) {
	atomic.AddInt32(&g.calls, 1)
	select {
	case <-g.release:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return Result{Records: expected}, g.err
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRunner_InitialState(t *testing.T) {
	r := NewRunner(&gatedIngester{}, 10, nil, nil)
	if r.State() != StateNotStarted {
		t.Errorf("State() = %q, want %q", r.State(), StateNotStarted)
	}
	if err := r.Wait(context.Background()); err != nil {
		t.Errorf("Wait() before Start = %v, want nil", err)
	}
}

func TestRunner_StartIsIdempotentWhileRunning(t *testing.T) {
	ing := &gatedIngester{release: make(chan struct{})}
	metrics := NewMetrics(nil)
	r := NewRunner(ing, 10, nil, metrics)

	if !r.Start(context.Background()) {
		t.Fatal("first Start() = false, want true")
	}
	if r.Start(context.Background()) {
		t.Error("second Start() while running = true, want false")
	}
	if r.State() != StateRunning {
		t.Errorf("State() = %q, want %q", r.State(), StateRunning)
	}
	if got := testutil.ToFloat64(metrics.RunState.WithLabelValues(string(StateRunning))); got != 1 {
		t.Errorf("running gauge = %v, want 1", got)
	}

	close(ing.release)
	if err := r.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if r.State() != StateDone {
		t.Errorf("State() = %q, want %q", r.State(), StateDone)
	}
	if n := atomic.LoadInt32(&ing.calls); n != 1 {
		t.Errorf("ingester called %d times, want 1", n)
	}
	res, err := r.LastResult()
	if err != nil || res.Records != 10 {
		t.Errorf("LastResult() = %+v, %v; want 10 records, nil", res, err)
	}
	if got := testutil.ToFloat64(metrics.RunState.WithLabelValues(string(StateDone))); got != 1 {
		t.Errorf("done gauge = %v, want 1", got)
	}
}

func TestRunner_Failure(t *testing.T) {
	ing := &gatedIngester{release: make(chan struct{}), err: errors.New("index unavailable")}
	close(ing.release)
	r := NewRunner(ing, 10, nil, nil)

	r.Start(context.Background())
	if err := r.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if r.State() != StateFailed {
		t.Errorf("State() = %q, want %q", r.State(), StateFailed)
	}
	if _, err := r.LastResult(); err == nil {
		t.Error("LastResult() error = nil, want run error")
	}
}

func TestRunner_RestartAfterCompletion(t *testing.T) {
	ing := &gatedIngester{release: make(chan struct{})}
	close(ing.release)
	r := NewRunner(ing, 10, nil, nil)

	for i := 0; i < 2; i++ {
		if !r.Start(context.Background()) {
			t.Fatalf("Start() #%d = false, want true after previous run finished", i+1)
		}
		if err := r.Wait(waitCtx(t)); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if n := atomic.LoadInt32(&ing.calls); n != 2 {
		t.Errorf("ingester called %d times, want 2", n)
	}
}

func TestRunner_WaitHonorsContext(t *testing.T) {
	ing := &gatedIngester{release: make(chan struct{})}
	defer close(ing.release)
	r := NewRunner(ing, 10, nil, nil)
	r.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestRunner_OnFinishRunsBeforeWaitReturns(t *testing.T) {
	ing := &gatedIngester{release: make(chan struct{})}
	close(ing.release)
	r := NewRunner(ing, 12, nil, nil)

	var got Result
	var calls int32
	r.OnFinish(func(res Result, err error) {
		atomic.AddInt32(&calls, 1)
		got = res
	})

	r.Start(context.Background())
	if err := r.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("OnFinish calls = %d, want 1", calls)
	}
	if got.Records != 12 {
		t.Errorf("OnFinish result Records = %d, want 12", got.Records)
	}
}
