package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/job"
)

// Admit implements sched.JobQueue.
func (s *Store) Admit(ctx context.Context, j *job.Job) error {
	m := fromJob(j)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	return err
}

// Get implements sched.JobQueue, searching active and terminal rows
// alike since both forms live in the same table distinguished only by
// Status.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	m := new(jobModel)
	err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sched.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toJob(m)
}

// NextWaitingBatch implements sched.JobQueue.
func (s *Store) NextWaitingBatch(ctx context.Context) ([]*job.Job, error) {
	var models []*jobModel
	err := s.db.NewSelect().
		Model(&models).
		Where("status = ?", job.Waiting.String()).
		OrderExpr("v_exec_shots ASC, created_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]*job.Job, 0, len(models))
	for _, m := range models {
		jb, err := toJob(m)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, jb)
	}
	return jobs, nil
}

// PromoteToTerminal implements sched.JobQueue. The update is
// restricted to currently-active rows so a job can never be observed
// moving terminal->active or re-promoted once terminal.
func (s *Store) PromoteToTerminal(ctx context.Context, id uuid.UUID, status job.Status, result json.RawMessage) error {
	if !status.Terminal() {
		return sched.ErrBadStatus
	}
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", status.String()).
		Set("result = ?", result).
		Set("updated_time = ?", time.Now()).
		Where("id = ?", id).
		Where("status IN (?, ?)", job.Waiting.String(), job.Running.String()).
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

// UpdateProgress implements sched.JobQueue. Like PromoteToTerminal,
// the update is restricted to active rows.
func (s *Store) UpdateProgress(ctx context.Context, id uuid.UUID, execShots, vExecShots int, result json.RawMessage, status job.Status) error {
	if status.Terminal() {
		return sched.ErrBadStatus
	}
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("exec_shots = ?", execShots).
		Set("v_exec_shots = ?", vExecShots).
		Set("result = ?", result).
		Set("status = ?", status.String()).
		Set("updated_time = ?", time.Now()).
		Where("id = ?", id).
		Where("status IN (?, ?)", job.Waiting.String(), job.Running.String()).
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
