// Package scheduler triggers scans on a fixed interval and collapses
// overlapping trigger requests into a single in-flight run.
package scheduler

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/good-yellow-bee/docsentry/internal/scanner"
)

// Runner is the scan entry point shared by the ticker and manual
// triggers.
type Runner interface {
	Run(ctx context.Context) (*scanner.Result, error)
}

// Scheduler owns the periodic scan loop.
type Scheduler struct {
	runner   Runner
	interval time.Duration

	// baseCtx bounds scan execution to the process lifetime. Scans
	// never run under a trigger caller's context: a disconnecting HTTP
	// client must not cancel a run that scheduled ticks have joined.
	baseCtx context.Context

	// group serializes scan runs: a trigger arriving while a scan is
	// in flight joins that run and receives its result instead of
	// starting a second walk over the source.
	group singleflight.Group
}

// New creates a scheduler that fires every interval. Scans execute
// under ctx, which should span the process lifetime.
func New(ctx context.Context, runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		baseCtx:  ctx,
	}
}

// Trigger requests a scan. Concurrent callers share one run. The
// caller's context only bounds the wait: if it is canceled the caller
// gets its error back while the scan keeps running for the others.
func (s *Scheduler) Trigger(ctx context.Context) (*scanner.Result, error) {
	ch := s.group.DoChan("scan", func() (any, error) {
		return s.runner.Run(s.baseCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Printf("scheduler: trigger joined an in-flight scan")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*scanner.Result), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run blocks, firing a scan every interval until the context is
// canceled. A failed scan is logged and the loop waits for the next
// tick; the initial startup scan is the caller's responsibility.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("scheduler: scanning every %v", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("scheduler: stopped")
			return
		case <-ticker.C:
			if _, err := s.Trigger(ctx); err != nil {
				log.Printf("scheduler: scheduled scan failed: %v", err)
			}
		}
	}
}
