package sched

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BAQIC/emulate-server/internal"
	"github.com/BAQIC/emulate-server/job"
)

// DispatcherConfig tunes the dispatch loop.
type DispatcherConfig struct {
	// Period is the tick interval. Default 1s.
	Period time.Duration
	// StopTimeout bounds how long Stop waits for in-flight executors
	// to drain.
	StopTimeout time.Duration
}

// Dispatcher is the single, long-lived matcher task: once per tick it
// orders waiting jobs by priority, matches each against the
// tightest-fitting eligible agent, reserves qubits, and spawns an
// Executor — never performing agent I/O itself.
type Dispatcher struct {
	lcBase
	queue    JobQueue
	registry AgentRegistry
	executor *Executor
	tick     internal.TimerTask
	tasks    *internal.TaskGroup
	period   time.Duration
	stopWait time.Duration
	log      *slog.Logger
}

// NewDispatcher builds a Dispatcher. executor is invoked, one
// goroutine per match, for every (job, agent) pair the matcher finds.
func NewDispatcher(queue JobQueue, registry AgentRegistry, executor *Executor, cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	period := cfg.Period
	if period <= 0 {
		period = time.Second
	}
	stopWait := cfg.StopTimeout
	if stopWait <= 0 {
		stopWait = 30 * time.Second
	}
	return &Dispatcher{
		queue:    queue,
		registry: registry,
		executor: executor,
		tasks:    internal.NewTaskGroup(log),
		period:   period,
		stopWait: stopWait,
		log:      log,
	}
}

// round implements one dispatch tick: fetch the waiting batch in
// priority order, and for each job in order, find the least-idle
// eligible agent. The first job with no eligible agent ends the round
// — lower-priority jobs must not jump ahead of it.
func (d *Dispatcher) round(ctx context.Context) {
	jobs, err := d.queue.NextWaitingBatch(ctx)
	if err != nil {
		d.log.Error("cannot fetch waiting batch", "err", err)
		return
	}
	for _, j := range jobs {
		a, err := d.registry.LeastIdleEligible(ctx, j.Qubits, j.Depth)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return
			}
			d.log.Error("cannot query eligible agents", "job", j.Id, "err", err)
			return
		}
		if err := d.registry.Acquire(ctx, a.Id, j.Qubits); err != nil {
			// Lost the race against a concurrent match or a drain;
			// leave this job waiting for the next tick rather than
			// stopping the whole round, since the queue order did not
			// predict this particular failure.
			d.log.Debug("lost acquire race, deferring to next tick", "job", j.Id, "agent", a.Id, "err", err)
			continue
		}
		if err := d.queue.UpdateProgress(ctx, j.Id, j.ExecShots, j.VExecShots, j.Result, job.Running); err != nil {
			d.log.Error("cannot mark job running", "job", j.Id, "err", err)
			if relErr := d.registry.Release(ctx, a.Id, j.Qubits); relErr != nil {
				d.log.Error("cannot release qubits after failed mark-running", "agent", a.Id, "err", relErr)
			}
			continue
		}
		jCopy, aCopy := j, a
		d.tasks.Go(func(ctx context.Context) {
			d.executor.Run(ctx, jCopy, aCopy)
		})
	}
}

// Start begins ticking. Start returns ErrDoubleStarted if already
// running.
func (d *Dispatcher) Start(ctx context.Context) error {
	if err := d.tryStart(); err != nil {
		return err
	}
	d.tasks.Start(ctx)
	d.tick.Start(ctx, d.round, d.period)
	return nil
}

func (d *Dispatcher) doStop() internal.DoneChan {
	first := d.tick.Stop()
	second := d.tasks.Stop()
	return internal.Combine(first, second)
}

// Stop halts ticking and waits, up to the configured timeout, for all
// in-flight executors to finish draining.
func (d *Dispatcher) Stop() error {
	return d.tryStop(d.stopWait, d.doStop)
}
