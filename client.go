package sched

import (
	"context"
	"encoding/json"

	"github.com/BAQIC/emulate-server/agent"
	"github.com/BAQIC/emulate-server/job"
)

// Invocation describes one remote slice request.
type Invocation struct {
	Qasm  string
	Shots int
	Mode  job.Mode
}

// AgentClient performs the outbound agent protocol: a form-encoded
// POST to the agent's /submit endpoint, returning the decoded JSON
// response body on success.
//
// Invoke must map any transport failure or non-2xx response to
// ErrTransport and any undecodable 2xx body to ErrDecode; it must not
// retry and must not mutate a.
type AgentClient interface {
	Invoke(ctx context.Context, a *agent.Agent, inv Invocation) (json.RawMessage, error)
}
