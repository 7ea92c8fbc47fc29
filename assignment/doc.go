// Package assignment defines the append-only audit record of a single
// dispatch: one Assignment row per (job, agent) invocation.
//
// Assignments are created Running and later transitioned to Succeeded
// or Failed; no other transitions occur, and rows are never deleted by
// normal job processing (they remain for audit and crash recovery even
// after the job they reference reaches a terminal state).
package assignment
