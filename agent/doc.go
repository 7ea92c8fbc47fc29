// Package agent defines the remote executor entity the dispatcher
// matches waiting jobs against.
//
// An Agent is addressable over HTTP at (Ip, Port), which must be
// unique across all agents. QubitCount is its static capacity;
// QubitIdle is the remaining free capacity, mutated exclusively by
// AgentRegistry's Acquire/Release. CircuitDepth is the maximum circuit
// depth the agent can execute.
//
// Status gates eligibility: only Running agents are matched by the
// dispatcher. Down is used during UpdateOrDrain to keep an agent out
// of new matches while its in-flight slices complete.
package agent
