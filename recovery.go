package sched

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BAQIC/emulate-server/assignment"
	"github.com/BAQIC/emulate-server/internal"
	"github.com/BAQIC/emulate-server/job"
)

// RecoveryConfig tunes the orphan-assignment sweep: an optional but
// recommended pass at startup that marks orphaned running assignments
// failed.
type RecoveryConfig struct {
	// Interval is how often the sweep runs. A zero Interval means the
	// sweep only ever runs once, via RunOnce.
	Interval time.Duration
}

// Recovery periodically scans for assignments stuck in Running with
// no executor left to finish them: a storage error inside an executor
// after a successful remote call is fatal for that executor and
// leaves the assignment running. Those assignments, and the jobs
// waiting on them, would otherwise never reach a terminal state.
//
// Recovery does not attempt to distinguish a genuinely in-flight
// assignment from an orphaned one; every Running assignment is
// treated as orphaned. It is intended to run
// once at process startup, before the Dispatcher starts, when any
// Running assignment is necessarily a leftover from a previous
// process. A nonzero Interval additionally runs it periodically as a
// defensive sweep.
type Recovery struct {
	lcBase
	assignments AssignmentLog
	queue       JobQueue
	task        internal.TimerTask
	interval    time.Duration
	log         *slog.Logger
}

// NewRecovery builds a Recovery sweep over the given assignment log
// and job queue.
func NewRecovery(assignments AssignmentLog, queue JobQueue, cfg RecoveryConfig, log *slog.Logger) *Recovery {
	return &Recovery{
		assignments: assignments,
		queue:       queue,
		interval:    cfg.Interval,
		log:         log,
	}
}

// RunOnce performs a single sweep: every Running assignment is marked
// Failed and its job promoted to terminal Failed, unless the job has
// already reached a terminal state by other means.
func (r *Recovery) RunOnce(ctx context.Context) (int, error) {
	running, err := r.assignments.ListRunning(ctx)
	if err != nil {
		return 0, err
	}
	result, _ := json.Marshal(map[string]string{"Error": "orphaned running assignment recovered at startup"})
	var n int
	for _, a := range running {
		if err := r.assignments.UpdateStatus(ctx, a.Id, assignment.Failed); err != nil {
			r.log.Error("cannot fail orphaned assignment", "assignment", a.Id, "err", err)
			continue
		}
		if err := r.queue.PromoteToTerminal(ctx, a.JobId, job.Failed, result); err != nil {
			r.log.Debug("job already terminal or missing during recovery", "job", a.JobId, "err", err)
		}
		n++
	}
	return n, nil
}

func (r *Recovery) sweep(ctx context.Context) {
	n, err := r.RunOnce(ctx)
	if err != nil {
		r.log.Error("recovery sweep failed", "err", err)
		return
	}
	if n > 0 {
		r.log.Info("recovered orphaned assignments", "count", n)
	}
}

// Start begins the periodic sweep. If Interval is zero, Start is a
// no-op and callers should invoke RunOnce directly instead.
func (r *Recovery) Start(ctx context.Context) error {
	if r.interval <= 0 {
		return nil
	}
	if err := r.tryStart(); err != nil {
		return err
	}
	r.task.Start(ctx, r.sweep, r.interval)
	return nil
}

// Stop terminates the periodic sweep, waiting up to timeout.
func (r *Recovery) Stop(timeout time.Duration) error {
	if r.interval <= 0 {
		return nil
	}
	return r.tryStop(timeout, r.task.Stop)
}
