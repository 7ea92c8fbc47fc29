package sched

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/BAQIC/emulate-server/job"
)

// JobQueue is the storage-agnostic contract for the active/terminal
// job tables.
//
// A job exists in exactly one of the two logical forms at any instant;
// implementations are responsible for keeping Admit, PromoteToTerminal,
// and UpdateProgress mutually consistent with that invariant.
type JobQueue interface {
	// Admit inserts a newly submitted job in the active, Waiting form.
	//
	// VExecShots must be set by the caller to the current minimum
	// VExecShots across already-waiting jobs (0 if none are waiting),
	// so the new job is interleaved fairly rather than starved or
	// allowed to jump the queue.
	Admit(ctx context.Context, j *job.Job) error

	// Get returns the job identified by id, searching both the active
	// and terminal forms. Get returns ErrNotFound if no job with that
	// id exists.
	Get(ctx context.Context, id uuid.UUID) (*job.Job, error)

	// NextWaitingBatch returns every job currently in the Waiting
	// status, ordered by VExecShots ascending, ties broken by
	// CreatedTime ascending.
	NextWaitingBatch(ctx context.Context) ([]*job.Job, error)

	// PromoteToTerminal atomically moves a job from the active form to
	// the terminal form, setting status (which must be Succeeded or
	// Failed) and the final, immutable result.
	//
	// PromoteToTerminal returns ErrBadStatus if the job is not
	// currently active.
	PromoteToTerminal(ctx context.Context, id uuid.UUID, status job.Status, result json.RawMessage) error

	// UpdateProgress applies a partial update to an active job's
	// ExecShots, VExecShots, Result, and Status (Waiting or Running).
	//
	// UpdateProgress returns ErrBadStatus if the job is not currently
	// active.
	UpdateProgress(ctx context.Context, id uuid.UUID, execShots, vExecShots int, result json.RawMessage, status job.Status) error
}
