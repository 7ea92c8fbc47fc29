package scenario

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/job"
)

var _ = Describe("multi-slice dispatch", func() {
	It("aggregates 20 successive 20-shot slices into 400 total shots", func() {
		agentSrv := newFakeAgentServer(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Memory":{"00":` + r.FormValue("shots") + `}}`))
		})
		defer agentSrv.Close()

		h := newHarness(10, 200)
		defer h.shutdown()

		ip, port := agentSrv.addr()
		_, err := h.sched.AddAgent(ctxBG(), ip, port, 2, 100)
		Expect(err).NotTo(HaveOccurred())

		j, err := h.sched.Submit(ctxBG(), "OPENQASM 2.0;", 2, 100, 400, job.Aggregation)
		Expect(err).NotTo(HaveOccurred())

		h.start()
		Expect(h.waitTerminal(j.Id, 5*time.Second)).To(BeTrue())

		got, err := h.sched.GetJob(ctxBG(), j.Id)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal(job.Succeeded))
		Expect(got.ExecShots).To(Equal(400))
	})
})

var _ = Describe("agent drain", func() {
	It("blocks UpdateOrDrain until the in-flight slice completes, without blocking other work", func() {
		release := make(chan struct{})
		agentSrv := newFakeAgentServer(func(w http.ResponseWriter, r *http.Request) {
			<-release
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Memory":{"00":400}}`))
		})
		defer agentSrv.Close()

		h := newHarness(10, 200)
		defer h.shutdown()

		ip, port := agentSrv.addr()
		a, err := h.sched.AddAgent(ctxBG(), ip, port, 4, 10)
		Expect(err).NotTo(HaveOccurred())

		j, err := h.sched.Submit(ctxBG(), "OPENQASM 2.0;", 2, 2, 400, job.Aggregation)
		Expect(err).NotTo(HaveOccurred())

		h.start()

		Eventually(func() int {
			cur, err := h.sched.GetAgentByAddress(ctxBG(), ip, port)
			if err != nil {
				return -1
			}
			return cur.QubitIdle
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(2), "dispatcher should have acquired 2 qubits for the in-flight slice")

		newCount := 16
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- h.sched.UpdateAgent(ctxBG(), a.Id, sched.AgentPatch{QubitCount: &newCount})
		}()

		Consistently(drainDone, 300*time.Millisecond).ShouldNot(Receive())

		close(release)

		Eventually(drainDone, 2*time.Second).Should(Receive(BeNil()))
		Expect(h.waitTerminal(j.Id, 2*time.Second)).To(BeTrue())

		final, err := h.sched.GetAgentByAddress(ctxBG(), ip, port)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.QubitCount).To(Equal(16))
		Expect(final.QubitIdle).To(Equal(16))
	})
})

var _ = Describe("priority fairness", func() {
	It("dispatches the first-admitted job first, then the newcomer submitted while it runs", func() {
		var order []string
		done := make(chan struct{}, 2)
		agentSrv := newFakeAgentServer(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			order = append(order, r.FormValue("qasm"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Memory":{"00":100}}`))
			done <- struct{}{}
		})
		defer agentSrv.Close()

		h := newHarness(10, 200)
		defer h.shutdown()

		ip, port := agentSrv.addr()
		_, err := h.sched.AddAgent(ctxBG(), ip, port, 2, 10)
		Expect(err).NotTo(HaveOccurred())

		jobA, err := h.sched.Submit(ctxBG(), "A", 2, 2, 200, job.Aggregation)
		Expect(err).NotTo(HaveOccurred())

		h.start()

		Eventually(done, 2*time.Second).Should(Receive())

		jobB, err := h.sched.Submit(ctxBG(), "B", 2, 2, 200, job.Aggregation)
		Expect(err).NotTo(HaveOccurred())

		Expect(h.waitTerminal(jobA.Id, 3*time.Second)).To(BeTrue())
		Expect(h.waitTerminal(jobB.Id, 3*time.Second)).To(BeTrue())

		Expect(order).To(HaveLen(2))
		Expect(order[0]).To(Equal("A"))
	})
})
