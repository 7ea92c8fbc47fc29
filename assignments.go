package sched

import (
	"context"

	"github.com/google/uuid"

	"github.com/BAQIC/emulate-server/assignment"
)

// AssignmentLog is the storage-agnostic contract for the append-only
// per-dispatch audit trail.
type AssignmentLog interface {
	// Append inserts a new assignment row with Status: Running.
	Append(ctx context.Context, a *assignment.Assignment) error

	// UpdateStatus transitions an assignment from Running to
	// Succeeded or Failed. It returns ErrBadStatus if the assignment
	// is not currently Running.
	UpdateStatus(ctx context.Context, id uuid.UUID, status assignment.Status) error

	// ListByJob returns every assignment recorded against jobID, in
	// creation order.
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*assignment.Assignment, error)

	// ListByAgent returns every assignment recorded against agentID,
	// in creation order.
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*assignment.Assignment, error)

	// ListRunning returns every assignment currently in the Running
	// status, across all agents and jobs. Used by the startup
	// recovery sweep to find orphans left by a crash between a
	// successful remote call and its storage commit.
	ListRunning(ctx context.Context) ([]*assignment.Assignment, error)
}
