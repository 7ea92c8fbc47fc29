package agentclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agent"
)

// Client implements sched.AgentClient over net/http: a single unary
// form-POST-and-decode-JSON call doesn't warrant a third-party HTTP
// client.
type Client struct {
	http *http.Client
	// Timeout bounds a single call. Should cover at least one shot's
	// expected wall time; a zero Timeout leaves the deadline to ctx.
	Timeout time.Duration
}

// New builds a Client with the given per-call timeout. A zero timeout
// means no deadline beyond ctx's own.
func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{}, Timeout: timeout}
}

var _ sched.AgentClient = (*Client)(nil)

// Invoke implements sched.AgentClient.
func (c *Client) Invoke(ctx context.Context, a *agent.Agent, inv sched.Invocation) (json.RawMessage, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	form := url.Values{}
	form.Set("qasm", inv.Qasm)
	form.Set("shots", strconv.Itoa(inv.Shots))
	if inv.Mode != 0 {
		form.Set("mode", inv.Mode.String())
	}

	endpoint := fmt.Sprintf("http://%s:%d/submit", a.Ip, a.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sched.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sched.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sched.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: agent returned status %d: %s", sched.ErrTransport, resp.StatusCode, string(body))
	}

	var probe struct {
		Memory json.RawMessage `json:"Memory"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Memory == nil {
		return nil, fmt.Errorf("%w: response has no decodable Memory field", sched.ErrDecode)
	}

	return json.RawMessage(body), nil
}
