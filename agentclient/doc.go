// Package agentclient implements sched.AgentClient: the outbound HTTP
// protocol for invoking an agent, a form-encoded POST to its /submit
// endpoint returning a decoded JSON result body.
package agentclient
