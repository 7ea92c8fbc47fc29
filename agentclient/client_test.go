package agentclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agent"
)

func testAgentFor(t *testing.T, srv *httptest.Server) *agent.Agent {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse test server port: %v", err)
	}
	return &agent.Agent{Id: uuid.New(), Ip: u.Hostname(), Port: port}
}

func TestInvokeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.FormValue("shots") != "100" {
			t.Fatalf("expected shots=100, got %q", r.FormValue("shots"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Memory":{"00":100}}`))
	}))
	defer srv.Close()

	c := New(0)
	body, err := c.Invoke(context.Background(), testAgentFor(t, srv), sched.Invocation{Qasm: "OPENQASM 2.0;", Shots: 100})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !strings.Contains(string(body), `"00":100`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestInvokeNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(0)
	_, err := c.Invoke(context.Background(), testAgentFor(t, srv), sched.Invocation{Qasm: "x", Shots: 1})
	if !errors.Is(err, sched.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestInvokeUndecodableBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(0)
	_, err := c.Invoke(context.Background(), testAgentFor(t, srv), sched.Invocation{Qasm: "x", Shots: 1})
	if !errors.Is(err, sched.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
