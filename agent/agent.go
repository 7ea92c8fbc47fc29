package agent

import "github.com/google/uuid"

// Agent represents a remote executor (simulator or quantum device)
// addressable over HTTP.
//
// (Ip, Port) is unique across all agents; this is enforced by
// AgentRegistry.Admit. QubitIdle must always satisfy
// 0 <= QubitIdle <= QubitCount.
type Agent struct {
	Id uuid.UUID

	Ip   string
	Port int

	QubitCount   int
	QubitIdle    int
	CircuitDepth int

	Status Status
}

// Eligible reports whether the agent can currently accept a job
// requiring qubits qubits and a circuit of depth depth.
func (a *Agent) Eligible(qubits, depth int) bool {
	return a.Status == Running && a.QubitIdle >= qubits && a.CircuitDepth >= depth
}
