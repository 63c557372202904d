package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/good-yellow-bee/docsentry/internal/scanner"
)

// slowRunner counts runs and can block until released.
type slowRunner struct {
	runs        atomic.Int64
	ctxCanceled atomic.Bool
	release     chan struct{}
}

func (r *slowRunner) Run(ctx context.Context) (*scanner.Result, error) {
	n := r.runs.Add(1)
	if r.release != nil {
		<-r.release
	}
	if ctx.Err() != nil {
		r.ctxCanceled.Store(true)
	}
	return &scanner.Result{RunID: time.Now().Format("150405.000"), DocumentsScanned: int(n)}, nil
}

func TestTriggerCollapsesConcurrentRequests(t *testing.T) {
	runner := &slowRunner{release: make(chan struct{})}
	s := New(context.Background(), runner, time.Hour)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]*scanner.Result, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := s.Trigger(context.Background())
			if err != nil {
				t.Errorf("Trigger: %v", err)
				return
			}
			results[i] = r
		}(i)
	}

	// Let all callers pile onto the in-flight run, then release it.
	time.Sleep(50 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	if got := runner.runs.Load(); got != 1 {
		t.Errorf("runner ran %d times, want 1 (overlapping triggers must collapse)", got)
	}
	for i := 1; i < callers; i++ {
		if results[i].RunID != results[0].RunID {
			t.Errorf("caller %d got a different run", i)
		}
	}
}

func TestTriggerSequentialRunsAreSeparate(t *testing.T) {
	runner := &slowRunner{}
	s := New(context.Background(), runner, time.Hour)

	if _, err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if _, err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	if got := runner.runs.Load(); got != 2 {
		t.Errorf("runner ran %d times, want 2", got)
	}
}

func TestTriggerCallerCancelDoesNotAbortRun(t *testing.T) {
	runner := &slowRunner{release: make(chan struct{})}
	s := New(context.Background(), runner, time.Hour)

	// First caller triggers the run, then disconnects mid-flight.
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Trigger(ctx)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled caller err = %v, want context.Canceled", err)
	}

	// A second caller joins the still-running scan and gets its result.
	resCh := make(chan *scanner.Result, 1)
	go func() {
		r, err := s.Trigger(context.Background())
		if err != nil {
			t.Errorf("joining Trigger: %v", err)
		}
		resCh <- r
	}()
	time.Sleep(20 * time.Millisecond)
	close(runner.release)

	if r := <-resCh; r == nil {
		t.Fatal("joining caller got no result")
	}
	if got := runner.runs.Load(); got != 1 {
		t.Errorf("runner ran %d times, want 1", got)
	}
	if runner.ctxCanceled.Load() {
		t.Error("caller disconnect canceled the scan context")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	runner := &slowRunner{}
	s := New(context.Background(), runner, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if runner.runs.Load() == 0 {
		t.Error("scheduler never fired")
	}
}
