package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/job"
)

func newTestJob(qubits, depth, shots int) *job.Job {
	now := time.Now()
	return &job.Job{
		Id:          uuid.New(),
		Source:      "OPENQASM 2.0;",
		Qubits:      qubits,
		Depth:       depth,
		Shots:       shots,
		Mode:        job.Aggregation,
		Status:      job.Waiting,
		CreatedTime: now,
		UpdatedTime: now,
	}
}

func TestAdmitAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := newTestJob(2, 2, 400)
	if err := s.Admit(ctx, j); err != nil {
		t.Fatalf("admit: %v", err)
	}

	got, err := s.Get(ctx, j.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != job.Waiting || got.Shots != 400 {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), uuid.New()); err != sched.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNextWaitingBatchOrdersByVExecShotsThenCreated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newTestJob(2, 2, 400)
	a.VExecShots = 10
	a.CreatedTime = time.Now().Add(-time.Minute)
	b := newTestJob(2, 2, 400)
	b.VExecShots = 0
	running := newTestJob(2, 2, 400)
	running.Status = job.Running

	for _, j := range []*job.Job{a, b, running} {
		if err := s.Admit(ctx, j); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}

	batch, err := s.NextWaitingBatch(ctx)
	if err != nil {
		t.Fatalf("next waiting batch: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 waiting jobs, got %d", len(batch))
	}
	if batch[0].Id != b.Id || batch[1].Id != a.Id {
		t.Fatalf("expected b before a, got %v then %v", batch[0].Id, batch[1].Id)
	}
}

func TestUpdateProgressThenPromoteToTerminal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := newTestJob(2, 2, 400)
	if err := s.Admit(ctx, j); err != nil {
		t.Fatalf("admit: %v", err)
	}

	result := []byte(`{"Memory":{"00":400}}`)
	if err := s.UpdateProgress(ctx, j.Id, 400, 400, result, job.Waiting); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	if err := s.PromoteToTerminal(ctx, j.Id, job.Succeeded, result); err != nil {
		t.Fatalf("promote: %v", err)
	}

	got, err := s.Get(ctx, j.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != job.Succeeded {
		t.Fatalf("expected succeeded, got %v", got.Status)
	}

	// A job never appears in both active and terminal form: a second
	// promotion or progress update against the now-terminal row must
	// fail rather than silently mutate a frozen result.
	if err := s.PromoteToTerminal(ctx, j.Id, job.Failed, result); err != sched.ErrBadStatus {
		t.Fatalf("expected ErrBadStatus on double promotion, got %v", err)
	}
	if err := s.UpdateProgress(ctx, j.Id, 400, 400, result, job.Waiting); err != sched.ErrBadStatus {
		t.Fatalf("expected ErrBadStatus on progress update of terminal job, got %v", err)
	}
}
