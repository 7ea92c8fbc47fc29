package sched

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BAQIC/emulate-server/agent"
	"github.com/BAQIC/emulate-server/job"
)

// Scheduler is the application-level facade the REST adapter calls:
// it composes JobQueue and AgentRegistry for the two operations that
// need cross-entity knowledge the storage interfaces alone don't
// capture (admission fit-checking, virtual-progress seeding, and
// agent address resolution).
type Scheduler struct {
	queue    JobQueue
	registry AgentRegistry
}

// NewScheduler builds a Scheduler over the given storage-agnostic
// contracts.
func NewScheduler(queue JobQueue, registry AgentRegistry) *Scheduler {
	return &Scheduler{queue: queue, registry: registry}
}

// Submit admits a new job: it rejects with ErrAdmissionRejected if no
// agent could ever run a circuit this size or depth, otherwise seeds
// VExecShots from the current minimum across waiting jobs and writes
// the job as Waiting.
func (s *Scheduler) Submit(ctx context.Context, source string, qubits, depth, shots int, mode job.Mode) (*job.Job, error) {
	ok, err := s.registry.AnyCapable(ctx, qubits, depth)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAdmissionRejected
	}

	vExecShots, err := s.minWaitingVExecShots(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	j := &job.Job{
		Id:          uuid.New(),
		Source:      source,
		Qubits:      qubits,
		Depth:       depth,
		Shots:       shots,
		Mode:        mode,
		VExecShots:  vExecShots,
		Status:      job.Waiting,
		CreatedTime: now,
		UpdatedTime: now,
	}
	if err := s.queue.Admit(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Scheduler) minWaitingVExecShots(ctx context.Context) (int, error) {
	waiting, err := s.queue.NextWaitingBatch(ctx)
	if err != nil {
		return 0, err
	}
	if len(waiting) == 0 {
		return 0, nil
	}
	min := waiting[0].VExecShots
	for _, j := range waiting[1:] {
		if j.VExecShots < min {
			min = j.VExecShots
		}
	}
	return min, nil
}

// GetJob returns the job identified by id, active or terminal.
func (s *Scheduler) GetJob(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	return s.queue.Get(ctx, id)
}

// AddAgent admits a new agent at the resolved address.
func (s *Scheduler) AddAgent(ctx context.Context, ip string, port, qubitCount, circuitDepth int) (*agent.Agent, error) {
	a := &agent.Agent{
		Id:           uuid.New(),
		Ip:           ip,
		Port:         port,
		QubitCount:   qubitCount,
		CircuitDepth: circuitDepth,
	}
	if err := s.registry.Admit(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAgentByAddress looks up an agent by (ip, port).
func (s *Scheduler) GetAgentByAddress(ctx context.Context, ip string, port int) (*agent.Agent, error) {
	return s.registry.GetByAddress(ctx, ip, port)
}

// GetAgent looks up an agent by id.
func (s *Scheduler) GetAgent(ctx context.Context, id uuid.UUID) (*agent.Agent, error) {
	return s.registry.Get(ctx, id)
}

// MostIdleAgent returns the eligible Running agent with the most
// spare qubit capacity for a circuit of the given shape. It is
// administrative tooling only; the Dispatcher always uses the
// tightest, not the loosest, fit.
func (s *Scheduler) MostIdleAgent(ctx context.Context, qubits, depth int) (*agent.Agent, error) {
	return s.registry.MostIdleEligible(ctx, qubits, depth)
}

// UpdateAgent applies patch to the agent identified by id via the
// drain-then-patch protocol.
func (s *Scheduler) UpdateAgent(ctx context.Context, id uuid.UUID, patch AgentPatch) error {
	return s.registry.UpdateOrDrain(ctx, id, patch)
}
