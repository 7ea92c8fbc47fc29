package sched

import (
	"context"

	"github.com/google/uuid"

	"github.com/BAQIC/emulate-server/agent"
)

// AgentPatch describes the fields UpdateOrDrain may change. A nil
// field is left untouched.
type AgentPatch struct {
	Ip           *string
	Port         *int
	QubitCount   *int
	CircuitDepth *int
	Status       *agent.Status
}

// AgentRegistry is the storage-agnostic contract for agent admission,
// lookup, eligibility filtering, and the drain-then-update protocol.
type AgentRegistry interface {
	// Admit inserts a new agent with QubitIdle := QubitCount and
	// Status := Running. Admit returns ErrDuplicate if an agent with
	// the same (Ip, Port) is already registered.
	Admit(ctx context.Context, a *agent.Agent) error

	// Get returns the agent identified by id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*agent.Agent, error)

	// GetByAddress returns the agent registered at (ip, port), or
	// ErrNotFound.
	GetByAddress(ctx context.Context, ip string, port int) (*agent.Agent, error)

	// AnyCapable reports whether at least one admitted agent has
	// QubitCount >= qubits and CircuitDepth >= depth, regardless of its
	// current QubitIdle or Status. Used at submission time to decide
	// ErrAdmissionRejected: a job that merely can't be dispatched
	// *right now* must still be admitted if some agent could eventually
	// run it.
	AnyCapable(ctx context.Context, qubits, depth int) (bool, error)

	// LeastIdleEligible returns the Running agent with
	// QubitIdle >= qubits and CircuitDepth >= depth that has the
	// smallest QubitIdle among those satisfying the predicate (the
	// tightest fit). It returns ErrNotFound if none match.
	LeastIdleEligible(ctx context.Context, qubits, depth int) (*agent.Agent, error)

	// MostIdleEligible is LeastIdleEligible's mirror: it returns the
	// eligible Running agent with the largest QubitIdle. Exposed for
	// administrative tooling; the Dispatcher never calls it.
	MostIdleEligible(ctx context.Context, qubits, depth int) (*agent.Agent, error)

	// Acquire atomically decrements QubitIdle by q, re-checking the
	// precondition QubitIdle >= q && Status == Running. It returns
	// ErrUnavailable if the precondition fails at the moment of the
	// update (a race lost against a concurrent Acquire or
	// UpdateOrDrain), leaving the stored agent unmutated.
	Acquire(ctx context.Context, id uuid.UUID, q int) error

	// Release atomically increments QubitIdle by q, capped at
	// QubitCount.
	Release(ctx context.Context, id uuid.UUID, q int) error

	// UpdateOrDrain applies patch to the agent, first flipping it to
	// Down to block new eligibility matches, then blocking until
	// QubitIdle == QubitCount (all in-flight slices have released),
	// then applying patch. If patch does not itself set Status, the
	// pre-call status is restored once applied.
	//
	// UpdateOrDrain must not block any other agent or job while
	// waiting; implementations poll at roughly a 1s cadence.
	UpdateOrDrain(ctx context.Context, id uuid.UUID, patch AgentPatch) error

	// Remove deletes the agent row. Assignments referencing it are
	// retained for audit.
	Remove(ctx context.Context, id uuid.UUID) error
}
