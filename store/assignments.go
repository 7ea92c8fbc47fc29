package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/assignment"
)

// Append implements sched.AssignmentLog.
func (s *Store) Append(ctx context.Context, a *assignment.Assignment) error {
	m := fromAssignment(a)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	return err
}

// UpdateStatus implements sched.AssignmentLog, restricted to rows
// currently Running so an assignment can only ever be resolved once.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status assignment.Status) error {
	res, err := s.db.NewUpdate().
		Model((*assignmentModel)(nil)).
		Set("status = ?", status.String()).
		Set("updated_time = ?", time.Now()).
		Where("id = ?", id).
		Where("status = ?", assignment.Running.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	ok, err := isAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return sched.ErrBadStatus
	}
	return nil
}

// ListByJob implements sched.AssignmentLog.
func (s *Store) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*assignment.Assignment, error) {
	return s.listAssignments(ctx, "job_id = ?", jobID)
}

// ListByAgent implements sched.AssignmentLog.
func (s *Store) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*assignment.Assignment, error) {
	return s.listAssignments(ctx, "agent_id = ?", agentID)
}

// ListRunning implements sched.AssignmentLog, used by the startup
// recovery sweep.
func (s *Store) ListRunning(ctx context.Context) ([]*assignment.Assignment, error) {
	return s.listAssignments(ctx, "status = ?", assignment.Running.String())
}

func (s *Store) listAssignments(ctx context.Context, where string, arg interface{}) ([]*assignment.Assignment, error) {
	var models []*assignmentModel
	err := s.db.NewSelect().
		Model(&models).
		Where(where, arg).
		OrderExpr("created_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*assignment.Assignment, 0, len(models))
	for _, m := range models {
		a, err := toAssignment(m)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
