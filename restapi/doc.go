// Package restapi is the thin REST adapter: it translates HTTP
// requests to sched.Scheduler/sched.AgentRegistry calls and back. It
// accepts both application/json and application/x-www-form-urlencoded
// bodies on /submit and /add_agent; /update_agent accepts JSON only.
package restapi
