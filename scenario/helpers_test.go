package scenario

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agentclient"
	"github.com/BAQIC/emulate-server/store"
)

func ctxBG() context.Context {
	return context.Background()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openMemStore() *store.Store {
	s, err := store.Open("file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		panic(err)
	}
	if err := store.InitDB(context.Background(), s.DB()); err != nil {
		panic(err)
	}
	return s
}

// fakeAgentServer runs one agent backend whose behavior per call can
// be swapped at runtime via Handle, and which counts concurrent
// in-flight requests for assertions on dispatch ordering and
// concurrency.
type fakeAgentServer struct {
	srv       *httptest.Server
	inFlight  atomic.Int32
	maxInFlt  atomic.Int32
	handle    func(w http.ResponseWriter, r *http.Request)
}

func newFakeAgentServer(handle func(w http.ResponseWriter, r *http.Request)) *fakeAgentServer {
	f := &fakeAgentServer{handle: handle}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := f.inFlight.Add(1)
		defer f.inFlight.Add(-1)
		for {
			cur := f.maxInFlt.Load()
			if n <= cur || f.maxInFlt.CompareAndSwap(cur, n) {
				break
			}
		}
		f.handle(w, r)
	}))
	return f
}

func (f *fakeAgentServer) addr() (string, int) {
	u, err := url.Parse(f.srv.URL)
	if err != nil {
		panic(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		panic(err)
	}
	return u.Hostname(), port
}

func (f *fakeAgentServer) maxConcurrent() int {
	return int(f.maxInFlt.Load())
}

func (f *fakeAgentServer) Close() {
	f.srv.Close()
}

type harness struct {
	store *store.Store
	sched *sched.Scheduler
	exec  *sched.Executor
	disp  *sched.Dispatcher
	stop  context.CancelFunc
}

func newHarness(minDepth, minGran int) *harness {
	s := openMemStore()
	sc := sched.NewScheduler(s, s)
	client := agentclient.New(5 * time.Second)
	exec := sched.NewExecutor(s, s, s, client, sched.ExecutorConfig{MinDepth: minDepth, MinGran: minGran}, discardLogger())
	disp := sched.NewDispatcher(s, s, exec, sched.DispatcherConfig{Period: 15 * time.Millisecond}, discardLogger())
	return &harness{store: s, sched: sc, exec: exec, disp: disp}
}

func (h *harness) start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.stop = cancel
	if err := h.disp.Start(ctx); err != nil {
		panic(err)
	}
}

func (h *harness) shutdown() {
	if h.stop != nil {
		h.stop()
	}
	_ = h.disp.Stop()
	_ = h.store.Close()
}

func (h *harness) waitTerminal(id uuid.UUID, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		j, err := h.sched.GetJob(context.Background(), id)
		if err == nil && j.Done() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
