package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agent"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// Admit implements sched.AgentRegistry.
func (s *Store) Admit(ctx context.Context, a *agent.Agent) error {
	a.QubitIdle = a.QubitCount
	a.Status = agent.Running
	m := fromAgent(a)
	exists, err := s.db.NewSelect().Model((*agentModel)(nil)).
		Where("ip = ? AND port = ?", a.Ip, a.Port).Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return sched.ErrDuplicate
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return sched.ErrDuplicate
		}
		return err
	}
	return nil
}

// Get implements sched.AgentRegistry.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*agent.Agent, error) {
	m := new(agentModel)
	err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sched.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toAgent(m)
}

// GetByAddress implements sched.AgentRegistry.
func (s *Store) GetByAddress(ctx context.Context, ip string, port int) (*agent.Agent, error) {
	m := new(agentModel)
	err := s.db.NewSelect().Model(m).Where("ip = ? AND port = ?", ip, port).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sched.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toAgent(m)
}

// AnyCapable implements sched.AgentRegistry.
func (s *Store) AnyCapable(ctx context.Context, qubits, depth int) (bool, error) {
	return s.db.NewSelect().Model((*agentModel)(nil)).
		Where("qubit_count >= ?", qubits).
		Where("circuit_depth >= ?", depth).
		Exists(ctx)
}

func (s *Store) eligible(ctx context.Context, qubits, depth int, desc bool) (*agent.Agent, error) {
	m := new(agentModel)
	q := s.db.NewSelect().Model(m).
		Where("status = ?", agent.Running.String()).
		Where("qubit_idle >= ?", qubits).
		Where("circuit_depth >= ?", depth)
	if desc {
		q = q.OrderExpr("qubit_idle DESC")
	} else {
		q = q.OrderExpr("qubit_idle ASC")
	}
	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sched.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toAgent(m)
}

// LeastIdleEligible implements sched.AgentRegistry: the tightest fit
// among eligible agents, the dispatcher's best-fit policy.
func (s *Store) LeastIdleEligible(ctx context.Context, qubits, depth int) (*agent.Agent, error) {
	return s.eligible(ctx, qubits, depth, false)
}

// MostIdleEligible implements sched.AgentRegistry: the roomiest
// eligible agent, exposed for administrative tooling only.
func (s *Store) MostIdleEligible(ctx context.Context, qubits, depth int) (*agent.Agent, error) {
	return s.eligible(ctx, qubits, depth, true)
}

// Acquire implements sched.AgentRegistry with a single atomic
// conditional update, re-checking the eligibility precondition rather
// than trusting the caller's earlier read.
func (s *Store) Acquire(ctx context.Context, id uuid.UUID, q int) error {
	res, err := s.db.NewUpdate().
		Model((*agentModel)(nil)).
		Set("qubit_idle = qubit_idle - ?", q).
		Where("id = ?", id).
		Where("status = ?", agent.Running.String()).
		Where("qubit_idle >= ?", q).
		Exec(ctx)
	if err != nil {
		return err
	}
	ok, err := isAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return sched.ErrUnavailable
	}
	return nil
}

// Release implements sched.AgentRegistry, capping the restored
// capacity at qubit_count so a double-release can never overshoot.
func (s *Store) Release(ctx context.Context, id uuid.UUID, q int) error {
	_, err := s.db.NewUpdate().
		Model((*agentModel)(nil)).
		Set("qubit_idle = CASE WHEN qubit_idle + ? > qubit_count THEN qubit_count ELSE qubit_idle + ? END", q, q).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdateOrDrain implements sched.AgentRegistry's drain-then-patch
// protocol: flip to Down, poll until qubit_idle == qubit_count, apply
// the patch, then restore status if the patch left it untouched.
func (s *Store) UpdateOrDrain(ctx context.Context, id uuid.UUID, patch sched.AgentPatch) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	priorStatus := a.Status

	if _, err := s.db.NewUpdate().
		Model((*agentModel)(nil)).
		Set("status = ?", agent.Down.String()).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		cur, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if cur.QubitIdle >= cur.QubitCount {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	q := s.db.NewUpdate().Model((*agentModel)(nil)).Where("id = ?", id)
	if patch.Ip != nil {
		q = q.Set("ip = ?", *patch.Ip)
	}
	if patch.Port != nil {
		q = q.Set("port = ?", *patch.Port)
	}
	if patch.QubitCount != nil {
		q = q.Set("qubit_count = ?", *patch.QubitCount).Set("qubit_idle = ?", *patch.QubitCount)
	}
	if patch.CircuitDepth != nil {
		q = q.Set("circuit_depth = ?", *patch.CircuitDepth)
	}
	finalStatus := priorStatus
	if patch.Status != nil {
		finalStatus = *patch.Status
	}
	q = q.Set("status = ?", finalStatus.String())

	_, err = q.Exec(ctx)
	return err
}

// Remove implements sched.AgentRegistry. Assignments referencing the
// agent are left untouched for audit.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*agentModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	ok, err := isAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return sched.ErrNotFound
	}
	return nil
}
