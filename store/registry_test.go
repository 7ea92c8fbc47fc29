package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agent"
)

func newTestAgent(ip string, port, qubitCount, depth int) *agent.Agent {
	return &agent.Agent{
		Id:           uuid.New(),
		Ip:           ip,
		Port:         port,
		QubitCount:   qubitCount,
		CircuitDepth: depth,
	}
}

func TestAdmitRejectsDuplicateAddress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newTestAgent("10.0.0.1", 9000, 4, 10)
	if err := s.Admit(ctx, a); err != nil {
		t.Fatalf("admit: %v", err)
	}

	dup := newTestAgent("10.0.0.1", 9000, 8, 20)
	if err := s.Admit(ctx, dup); err != sched.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newTestAgent("10.0.0.2", 9000, 4, 10)
	if err := s.Admit(ctx, a); err != nil {
		t.Fatalf("admit: %v", err)
	}

	if err := s.Acquire(ctx, a.Id, 2); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	got, err := s.Get(ctx, a.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.QubitIdle != 2 {
		t.Fatalf("expected idle 2, got %d", got.QubitIdle)
	}

	// Acquiring more than remains must fail and not mutate the row.
	if err := s.Acquire(ctx, a.Id, 3); err != sched.ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	got, _ = s.Get(ctx, a.Id)
	if got.QubitIdle != 2 {
		t.Fatalf("idle must be unchanged after failed acquire, got %d", got.QubitIdle)
	}

	if err := s.Release(ctx, a.Id, 2); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, _ = s.Get(ctx, a.Id)
	if got.QubitIdle != 4 {
		t.Fatalf("expected idle restored to 4, got %d", got.QubitIdle)
	}

	// Release caps at qubit_count rather than overshooting.
	if err := s.Release(ctx, a.Id, 10); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, _ = s.Get(ctx, a.Id)
	if got.QubitIdle != 4 {
		t.Fatalf("expected idle capped at qubit_count 4, got %d", got.QubitIdle)
	}
}

func TestLeastIdleEligiblePicksTightestFit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	roomy := newTestAgent("10.0.0.3", 9000, 16, 20)
	tight := newTestAgent("10.0.0.4", 9000, 4, 20)
	for _, a := range []*agent.Agent{roomy, tight} {
		if err := s.Admit(ctx, a); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}

	got, err := s.LeastIdleEligible(ctx, 2, 10)
	if err != nil {
		t.Fatalf("least idle eligible: %v", err)
	}
	if got.Id != tight.Id {
		t.Fatalf("expected tightest-fit agent %v, got %v", tight.Id, got.Id)
	}
}

func TestAnyCapableIgnoresCurrentIdleAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newTestAgent("10.0.0.6", 9000, 8, 10)
	if err := s.Admit(ctx, a); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if err := s.Acquire(ctx, a.Id, 8); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ok, err := s.AnyCapable(ctx, 8, 10)
	if err != nil {
		t.Fatalf("any capable: %v", err)
	}
	if !ok {
		t.Fatal("expected capable even though agent is fully acquired right now")
	}

	ok, err = s.AnyCapable(ctx, 9, 10)
	if err != nil {
		t.Fatalf("any capable: %v", err)
	}
	if ok {
		t.Fatal("expected not capable for qubits beyond qubit_count")
	}
}

func TestUpdateOrDrainAppliesAfterFullyIdle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newTestAgent("10.0.0.5", 9000, 4, 10)
	if err := s.Admit(ctx, a); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if err := s.Acquire(ctx, a.Id, 4); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := s.Release(ctx, a.Id, 4); err != nil {
		t.Fatalf("release: %v", err)
	}

	newCount := 16
	if err := s.UpdateOrDrain(ctx, a.Id, sched.AgentPatch{QubitCount: &newCount}); err != nil {
		t.Fatalf("update or drain: %v", err)
	}

	got, err := s.Get(ctx, a.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.QubitCount != 16 || got.QubitIdle != 16 {
		t.Fatalf("expected patched agent with full idle capacity, got %+v", got)
	}
	if got.Status != agent.Running {
		t.Fatalf("expected status restored to running, got %v", got.Status)
	}
}
