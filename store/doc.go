// Package store provides a bun-backed implementation of sched.JobQueue,
// sched.AgentRegistry, and sched.AssignmentLog compatible with SQLite
// (via modernc.org/sqlite, pure Go) and PostgreSQL (via pgdialect +
// pgx/v5), selected by the db_url scheme passed to Open.
//
// All three interfaces are implemented on a single *Store sharing one
// *bun.DB; there is no cross-table transaction requirement because the
// only cross-entity invariant (qubit accounting) is enforced with a
// single atomic conditional UPDATE ... WHERE row update in
// Acquire/Release for optimistic concurrency.
package store
