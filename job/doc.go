// Package job defines the scheduling entity at the heart of the
// quantum-circuit job scheduler.
//
// A Job carries the submitted circuit (source, qubits, depth, shots)
// together with the scheduling state the dispatcher and executor
// maintain as shots are dispatched to agents: exec shots so far, the
// virtual progress counter used for priority, the running Memory
// result, and a status.
//
// A Job exists in exactly one of two logical forms at any instant:
// active (Status is Waiting or Running) or terminal (Status is
// Succeeded or Failed). Once terminal, Result is frozen and the job is
// never mutated again. JobQueue implementations are responsible for
// keeping the two forms mutually exclusive.
//
// Job values returned by a JobQueue are snapshots; mutating them does
// not change stored state. Transitions must go through JobQueue.
package job
