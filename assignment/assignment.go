package assignment

import (
	"time"

	"github.com/google/uuid"
)

// Assignment records one remote invocation of a job slice on an agent.
//
// Shots is the slice size computed by the Executor, not the job's
// total shot count. Status starts Running and is set exactly once
// more, to Succeeded or Failed.
type Assignment struct {
	Id      uuid.UUID
	JobId   uuid.UUID
	AgentId uuid.UUID

	Shots int

	Status Status

	CreatedTime time.Time
	UpdatedTime time.Time
}
