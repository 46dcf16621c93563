package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the scheduler's Prometheus instruments. All methods are
// nil-safe so the bus can run without a metrics registry in tests.
type Metrics struct {
	workDelegated *prometheus.CounterVec
	workCompleted *prometheus.CounterVec
	workFailed    *prometheus.CounterVec
	workCancelled *prometheus.CounterVec
	workRetried   *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	activeWork    prometheus.Gauge
	agentsByType  *prometheus.GaugeVec
}

// NewMetrics creates and registers the scheduler metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		workDelegated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devteam_work_delegated_total",
			Help: "Work items accepted into the queue, by target agent type.",
		}, []string{"target_agent"}),
		workCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devteam_work_completed_total",
			Help: "Work items completed successfully, by target agent type.",
		}, []string{"target_agent"}),
		workFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devteam_work_failed_total",
			Help: "Work items failed permanently, by target agent type.",
		}, []string{"target_agent"}),
		workCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devteam_work_cancelled_total",
			Help: "Work items cancelled before completion, by target agent type.",
		}, []string{"target_agent"}),
		workRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devteam_work_retried_total",
			Help: "Work item retry requeues, by target agent type.",
		}, []string{"target_agent"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devteam_queue_depth",
			Help: "Work items currently waiting in the queue.",
		}),
		activeWork: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devteam_active_work",
			Help: "Work items currently being processed.",
		}),
		agentsByType: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "devteam_registered_agents",
			Help: "Registered agents, by agent type.",
		}, []string{"agent_type"}),
	}

	reg.MustRegister(
		m.workDelegated, m.workCompleted, m.workFailed, m.workCancelled, m.workRetried,
		m.queueDepth, m.activeWork, m.agentsByType,
	)
	return m
}

func (m *Metrics) delegated(agent string) {
	if m == nil {
		return
	}
	m.workDelegated.WithLabelValues(agent).Inc()
}

func (m *Metrics) completed(agent string) {
	if m == nil {
		return
	}
	m.workCompleted.WithLabelValues(agent).Inc()
}

func (m *Metrics) failed(agent string) {
	if m == nil {
		return
	}
	m.workFailed.WithLabelValues(agent).Inc()
}

func (m *Metrics) cancelled(agent string) {
	if m == nil {
		return
	}
	m.workCancelled.WithLabelValues(agent).Inc()
}

func (m *Metrics) retried(agent string) {
	if m == nil {
		return
	}
	m.workRetried.WithLabelValues(agent).Inc()
}

func (m *Metrics) setQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) setActiveWork(active int) {
	if m == nil {
		return
	}
	m.activeWork.Set(float64(active))
}

func (m *Metrics) setAgents(agentType string, count int) {
	if m == nil {
		return
	}
	m.agentsByType.WithLabelValues(agentType).Set(float64(count))
}
