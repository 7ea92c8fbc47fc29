package internal

import (
	"context"
	"log/slog"
	"sync"
)

// TaskHandler is a unit of work tracked by a TaskGroup.
type TaskHandler func(context.Context)

// TaskGroup tracks an unbounded number of concurrently running
// goroutines so that a caller can wait for all of them to finish.
//
// Unlike a fixed-size worker pool, TaskGroup never queues: Go starts a
// goroutine immediately. Concurrency here is bounded upstream by
// resource acquisition (an executor is only spawned after qubits have
// been reserved), not by a pool size.
type TaskGroup struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

// NewTaskGroup creates a TaskGroup. Start must be called before Go.
func NewTaskGroup(log *slog.Logger) *TaskGroup {
	return &TaskGroup{log: log}
}

func (g *TaskGroup) safeRun(ctx context.Context, h TaskHandler) {
	defer g.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("task panic recovered", "err", r)
		}
	}()
	h(ctx)
}

// Start prepares the group to accept tasks, deriving its lifetime from
// ctx.
func (g *TaskGroup) Start(ctx context.Context) {
	g.ctx, g.cancel = context.WithCancel(ctx)
}

// Go launches h in a new tracked goroutine. Go returns false without
// launching h if the group has already been stopped.
func (g *TaskGroup) Go(h TaskHandler) bool {
	select {
	case <-g.ctx.Done():
		return false
	default:
	}
	g.wg.Add(1)
	go g.safeRun(g.ctx, h)
	return true
}

// Stop signals cancellation to any running task's context and returns
// a DoneChan closed once every tracked goroutine has returned.
func (g *TaskGroup) Stop() DoneChan {
	g.cancel()
	return wrapWaitGroup(&g.wg)
}
