package sched

import "errors"

// Sentinel errors returned by the sched interfaces. Implementations
// must wrap these with errors.Is compatibility rather than returning
// opaque errors for these conditions, so callers (dispatcher,
// executor, restapi) can branch on them.
var (
	// ErrAdmissionRejected is returned by Scheduler.Submit when no
	// admitted agent has both qubit_count >= qubits and
	// circuit_depth >= depth for the submitted job.
	ErrAdmissionRejected = errors.New("sched: no agent fits submission")

	// ErrNotFound is returned when a job, agent, or assignment lookup
	// finds no matching row.
	ErrNotFound = errors.New("sched: not found")

	// ErrDuplicate is returned by AgentRegistry.Admit when the
	// (Ip, Port) pair is already registered.
	ErrDuplicate = errors.New("sched: duplicate agent address")

	// ErrUnavailable is returned by AgentRegistry.Acquire when the
	// agent no longer has enough idle qubits, or is not Running, at
	// the moment of the atomic acquire (a race lost against another
	// dispatch round or a concurrent UpdateOrDrain).
	ErrUnavailable = errors.New("sched: agent unavailable")

	// ErrBadStatus is returned by AssignmentLog.UpdateStatus and
	// JobQueue.PromoteToTerminal when the requested transition does
	// not start from the expected current status.
	ErrBadStatus = errors.New("sched: unexpected current status")

	// ErrTransport is returned by AgentClient.Invoke when the HTTP
	// round trip itself fails (dial, timeout, connection reset) or the
	// agent responds with a non-2xx status.
	ErrTransport = errors.New("sched: agent transport error")

	// ErrDecode is returned by AgentClient.Invoke when the agent
	// responds with a 2xx body that cannot be decoded as a result.
	// Incompatible Memory shapes across slices are reported by
	// job.MergeResult as job.ErrShapeMismatch, not as ErrDecode.
	ErrDecode = errors.New("sched: agent response decode error")

	// ErrDraining names the state of an agent that is mid-drain for a
	// pending UpdateOrDrain patch. AgentRegistry.Acquire does not
	// return it: an Acquire against a draining (Down) agent fails with
	// ErrUnavailable.
	ErrDraining = errors.New("sched: agent draining")
)
