package sched

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the scheduler's live state as Prometheus gauges:
// waiting-job count, running-assignment count, and per-agent idle
// qubits. Collect is called on each scrape rather than kept
// continuously up to date, so it never competes with the Dispatcher
// for storage access on the hot path.
type Metrics struct {
	queue       JobQueue
	assignments AssignmentLog
	registry    AgentRegistry
	log         *slog.Logger

	waitingJobs  prometheus.Gauge
	runningSlice prometheus.Gauge
	agentIdle    *prometheus.GaugeVec
}

// NewMetrics registers the scheduler's gauges against reg.
func NewMetrics(reg prometheus.Registerer, queue JobQueue, assignments AssignmentLog, registry AgentRegistry, log *slog.Logger) *Metrics {
	m := &Metrics{
		queue:       queue,
		assignments: assignments,
		registry:    registry,
		log:         log,
		waitingJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qsched",
			Name:      "waiting_jobs",
			Help:      "Number of jobs currently in the Waiting status.",
		}),
		runningSlice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qsched",
			Name:      "running_assignments",
			Help:      "Number of assignments currently in the Running status.",
		}),
		agentIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "qsched",
			Name:      "agent_qubit_idle",
			Help:      "Idle qubit capacity per agent.",
		}, []string{"agent_id"}),
	}
	reg.MustRegister(m.waitingJobs, m.runningSlice, m.agentIdle)
	return m
}

// Collect refreshes the waiting-job and running-assignment gauges from
// current storage state; the per-agent idle gauges are set only by
// ObserveAgent. Intended
// to be called from an admin HTTP handler immediately before
// serialising the registry, or on a short periodic timer.
func (m *Metrics) Collect(ctx context.Context) {
	if jobs, err := m.queue.NextWaitingBatch(ctx); err != nil {
		m.log.Error("metrics: cannot list waiting jobs", "err", err)
	} else {
		m.waitingJobs.Set(float64(len(jobs)))
	}

	if running, err := m.assignments.ListRunning(ctx); err != nil {
		m.log.Error("metrics: cannot list running assignments", "err", err)
	} else {
		m.runningSlice.Set(float64(len(running)))
	}
}

// ObserveAgent records an individual agent's idle qubit gauge. Called
// by the REST adapter's agent endpoints after each mutation, since
// AgentRegistry has no "list all" method in the core contract.
func (m *Metrics) ObserveAgent(agentID string, idle int) {
	m.agentIdle.WithLabelValues(agentID).Set(float64(idle))
}
