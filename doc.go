// Package sched provides the scheduling engine of the quantum-circuit
// job scheduler: a persistent queue of OpenQASM submissions dispatched,
// possibly in multiple shot-slices, to a fleet of remote agents over
// HTTP, with partial results aggregated until each job is complete.
//
// # Overview
//
// sched defines a set of storage-agnostic interfaces (JobQueue,
// AgentRegistry, AssignmentLog, AgentClient) and two long-lived
// components built on top of them: Dispatcher, which repeatedly matches
// waiting jobs to eligible agents, and Executor, which carries out one
// (job, agent) invocation.
//
// The package does not mandate a storage backend. The store
// subpackage provides a bun-backed SQL implementation compatible with
// SQLite and PostgreSQL.
//
// # Data Model
//
// A Job (package job) exists in exactly one of two logical forms:
// active (Waiting or Running) or terminal (Succeeded or Failed).
// ExecShots tracks shots dispatched so far; VExecShots is a virtual
// progress counter used only for dispatch priority, seeded at
// admission from the minimum across currently-waiting jobs so new
// submissions merge fairly rather than starving older ones.
//
// An Agent (package agent) is a remote executor addressable at a
// unique (Ip, Port). QubitIdle is mutated exclusively by
// AgentRegistry's Acquire/Release.
//
// An Assignment (package assignment) is an append-only record of one
// dispatch: created Running, and transitioned exactly once more to
// Succeeded or Failed.
//
// # Dispatch Loop
//
// The Dispatcher wakes once per second and, for the batch of waiting
// jobs ordered by VExecShots ascending (tie-broken by CreatedTime):
// finds the least-idle agent eligible for the job's qubit/depth
// requirements, acquires qubits on it, and spawns an Executor. If the
// highest-priority job in the batch has no eligible agent, the round
// stops there — priority order is preserved across the whole queue
// rather than letting lower-priority jobs jump ahead.
//
// # Shot Slicing and Merge
//
// The Executor computes a slice size from sched_min_depth/sched_min_gran
// tuning constants (deeper circuits get smaller slices), invokes the
// agent, and merges the returned Memory histogram into the job's
// running result according to its Mode (aggregation, sequence, max,
// min). A single slice failure fails the whole job; this layer does
// not retry.
//
// # Agent Lifecycle
//
// Agents are admitted with full idle capacity and transition to Down
// only through UpdateOrDrain, which blocks a patch (address, capacity,
// depth, or status change) until all of the agent's in-flight slices
// have released their qubits, without blocking any other agent or job
// in the meantime.
//
// # Concurrency Model
//
// The Dispatcher never performs agent I/O itself; it only reserves
// capacity and spawns Executors, which run unboundedly in number
// (bounded implicitly by the sum of idle qubits across agents — no
// slice launches without first acquiring qubits). Shutdown is
// cooperative: the Dispatcher stops ticking, then Stop waits for all
// in-flight Executors to drain, subject to a timeout.
package sched
