package syncer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mealtrack/mealsync/internal/api"
	"github.com/mealtrack/mealsync/internal/fetch"
	"github.com/mealtrack/mealsync/internal/store"
)

// SyncReport describes one drain attempt.
type SyncReport struct {
	// Succeeded lists mutations confirmed and removed, in replay
	// order.
	Succeeded []store.Mutation
	// Failed is the mutation the drain stopped at, nil when the
	// queue emptied.
	Failed *store.Mutation
	// FailureCode classifies the stopping failure.
	FailureCode fetch.ErrorCode
	// Remaining is the queue length after the drain.
	Remaining int
	// Duration is the wall time of the drain.
	Duration time.Duration
}

// Drained reports whether the queue emptied.
func (r SyncReport) Drained() bool {
	return r.Failed == nil && r.Remaining == 0
}

// TriggerSync drains the mutation queue in FIFO order, stopping at the
// first failure. Concurrent calls coalesce: while a drain is running,
// additional callers wait for it and share its report instead of
// starting a second drain.
func (o *Orchestrator) TriggerSync(ctx context.Context) (SyncReport, error) {
	o.mu.Lock()
	if run := o.inflight; run != nil {
		o.mu.Unlock()
		select {
		case <-run.done:
			return run.report, nil
		case <-ctx.Done():
			return SyncReport{}, ctx.Err()
		}
	}
	run := &drainRun{done: make(chan struct{})}
	o.inflight = run
	o.mu.Unlock()

	report, err := o.drain(ctx)

	o.mu.Lock()
	run.report = report
	o.inflight = nil
	o.mu.Unlock()
	close(run.done)

	return report, err
}

// drain replays pending mutations one at a time. A mutation leaves the
// queue only after the store confirms it; any failure stops the drain
// with everything from the failed mutation onward still queued.
//
// A validation rejection means the store will never accept the payload
// as-is. The mutation stays queued for operator review rather than
// being dropped, and the drain reports it as the stopping failure.
func (o *Orchestrator) drain(ctx context.Context) (SyncReport, error) {
	start := o.now()
	report := SyncReport{}

	pending, err := o.store.PendingMutations(ctx)
	if err != nil {
		return report, fmt.Errorf("load pending mutations: %w", err)
	}

	for i, m := range pending {
		if err := ctx.Err(); err != nil {
			report.Remaining = len(pending) - i
			report.Duration = o.now().Sub(start)
			return report, err
		}

		hdr := http.Header{api.MutationIDHeader: []string{m.ID}}
		_, sendErr := o.selector.Send(ctx, methodFor(m.Op), m.Target, m.Payload, hdr)
		if sendErr != nil {
			report.Failed = &pending[i]
			report.FailureCode = fetch.CodeOf(sendErr)
			report.Remaining = len(pending) - i
			report.Duration = o.now().Sub(start)
			o.logger.Warn("sync stopped",
				"seq", m.Seq, "op", m.Op, "target", m.Target,
				"code", report.FailureCode, "remaining", report.Remaining)
			if fetch.IsValidationRejected(sendErr) {
				// Recoverable for the caller: the queue is intact.
				return report, nil
			}
			return report, sendErr
		}

		if err := o.store.RemoveMutation(ctx, m.Seq); err != nil {
			// Confirmed upstream but still queued locally; the
			// idempotency key makes the eventual replay harmless.
			report.Remaining = len(pending) - i
			report.Duration = o.now().Sub(start)
			return report, fmt.Errorf("remove replayed mutation %d: %w", m.Seq, err)
		}

		o.invalidateDerived(ctx, familyFor(m.Target))
		report.Succeeded = append(report.Succeeded, m)
		o.logger.Info("mutation replayed", "seq", m.Seq, "op", m.Op, "target", m.Target)
	}

	report.Duration = o.now().Sub(start)
	return report, nil
}

// Run triggers a sync every interval until ctx is canceled. Failures
// are logged and the loop keeps going; the next tick retries.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := o.TriggerSync(ctx)
			if err != nil {
				o.logger.Warn("periodic sync failed", "error", err, "remaining", report.Remaining)
				continue
			}
			if len(report.Succeeded) > 0 || report.Failed != nil {
				o.logger.Info("periodic sync finished",
					"replayed", len(report.Succeeded), "remaining", report.Remaining)
			}
		}
	}
}
