package sched

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/BAQIC/emulate-server/agent"
	"github.com/BAQIC/emulate-server/assignment"
	"github.com/BAQIC/emulate-server/job"
)

// ExecutorConfig tunes the shot-slicing policy.
type ExecutorConfig struct {
	// MinDepth is sched_min_depth; deeper circuits get proportionally
	// smaller slices. Default 10.
	MinDepth int
	// MinGran is sched_min_gran, the slice size for a circuit of depth
	// exactly MinDepth; shallower circuits get proportionally larger
	// slices. Default 200.
	MinGran int
}

// Executor carries out one (job, agent) invocation: it sizes a slice,
// records an assignment, calls the agent, releases qubits, merges the
// result, and advances or terminates the job.
//
// An Executor is invoked by the Dispatcher once per matched pair; it
// does not retry and does not re-enqueue work itself.
type Executor struct {
	queue       JobQueue
	registry    AgentRegistry
	assignments AssignmentLog
	client      AgentClient
	minDepth    int
	minGran     int
	log         *slog.Logger
}

// NewExecutor builds an Executor over the given storage-agnostic
// contracts and agent client.
func NewExecutor(queue JobQueue, registry AgentRegistry, assignments AssignmentLog, client AgentClient, cfg ExecutorConfig, log *slog.Logger) *Executor {
	minDepth := cfg.MinDepth
	if minDepth <= 0 {
		minDepth = 10
	}
	minGran := cfg.MinGran
	if minGran <= 0 {
		minGran = 200
	}
	return &Executor{
		queue:       queue,
		registry:    registry,
		assignments: assignments,
		client:      client,
		minDepth:    minDepth,
		minGran:     minGran,
		log:         log,
	}
}

// sliceShots computes the shot count for the next slice:
// floor(min_depth/depth * min_gran), clamped to the job's remaining
// shots and floored at 1. depth <= 0 is treated as depth 1, so a
// degenerate circuit still produces a well-defined, non-infinite
// slice size.
func sliceShots(j *job.Job, minDepth, minGran int) int {
	depth := j.Depth
	if depth <= 0 {
		depth = 1
	}
	raw := int(math.Floor((float64(minDepth) / float64(depth)) * float64(minGran)))
	if raw < 1 {
		raw = 1
	}
	if remaining := j.Shots - j.ExecShots; raw > remaining {
		raw = remaining
	}
	if raw < 1 {
		raw = 1
	}
	return raw
}

// Run executes one slice of j on a. It always releases the qubits it
// was handed, regardless of outcome, and leaves the job in a
// consistent active or terminal state before returning.
func (e *Executor) Run(ctx context.Context, j *job.Job, a *agent.Agent) {
	shots := sliceShots(j, e.minDepth, e.minGran)
	now := time.Now()
	asg := &assignment.Assignment{
		Id:          uuid.New(),
		JobId:       j.Id,
		AgentId:     a.Id,
		Shots:       shots,
		Status:      assignment.Running,
		CreatedTime: now,
		UpdatedTime: now,
	}
	if err := e.assignments.Append(ctx, asg); err != nil {
		e.log.Error("cannot record assignment", "job", j.Id, "agent", a.Id, "err", err)
		if relErr := e.registry.Release(ctx, a.Id, j.Qubits); relErr != nil {
			e.log.Error("cannot release qubits after failed assignment append", "agent", a.Id, "err", relErr)
		}
		return
	}

	body, invokeErr := e.client.Invoke(ctx, a, Invocation{Qasm: j.Source, Shots: shots, Mode: j.Mode})

	if err := e.registry.Release(ctx, a.Id, j.Qubits); err != nil {
		e.log.Error("cannot release qubits", "agent", a.Id, "err", err)
	}

	if invokeErr != nil {
		e.fail(ctx, j, asg, invokeErr)
		return
	}

	merged, mergeErr := job.MergeResult(j.Result, body, j.Mode)
	if mergeErr != nil {
		e.fail(ctx, j, asg, mergeErr)
		return
	}

	execShots := j.ExecShots + shots
	vExecShots := j.VExecShots + shots

	if execShots >= j.Shots {
		if err := e.queue.PromoteToTerminal(ctx, j.Id, job.Succeeded, merged); err != nil {
			e.log.Error("cannot promote job to succeeded", "job", j.Id, "err", err)
			return
		}
	} else {
		if err := e.queue.UpdateProgress(ctx, j.Id, execShots, vExecShots, merged, job.Waiting); err != nil {
			e.log.Error("cannot update job progress", "job", j.Id, "err", err)
			return
		}
	}

	if err := e.assignments.UpdateStatus(ctx, asg.Id, assignment.Succeeded); err != nil {
		e.log.Error("cannot mark assignment succeeded", "assignment", asg.Id, "err", err)
	}
}

func (e *Executor) fail(ctx context.Context, j *job.Job, asg *assignment.Assignment, cause error) {
	e.log.Warn("slice failed", "job", j.Id, "agent", asg.AgentId, "err", cause)
	if err := e.assignments.UpdateStatus(ctx, asg.Id, assignment.Failed); err != nil {
		e.log.Error("cannot mark assignment failed", "assignment", asg.Id, "err", err)
	}
	result, _ := json.Marshal(map[string]string{"Error": cause.Error()})
	if err := e.queue.PromoteToTerminal(ctx, j.Id, job.Failed, result); err != nil {
		e.log.Error("cannot promote job to failed", "job", j.Id, "err", err)
	}
}
