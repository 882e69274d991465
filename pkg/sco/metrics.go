package sco

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of the engine.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	QueueDepth  prometheus.Gauge
	Duration    *prometheus.HistogramVec
}

// Rejection reasons.
const (
	RejectUnknownOperation = "unknown_operation"
	RejectKindMismatch     = "kind_mismatch"
	RejectMissingHandle    = "missing_handle"
	RejectQueueFull        = "queue_full"
)

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdc_sco_invocations_total",
				Help: "Completed operation invocations by kind and terminal state.",
			},
			[]string{"kind", "state"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdc_sco_rejected_total",
				Help: "Requests rejected before entering the queue.",
			},
			[]string{"reason"},
		),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sdc_sco_queue_depth",
			Help: "Invocations waiting for the worker.",
		}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sdc_sco_effect_duration_seconds",
				Help:    "Time from START to the terminal state.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Invocations, m.Rejected, m.QueueDepth, m.Duration)
	}
	return m
}

func (m *Metrics) reject(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) queued(depth int) {
	if m != nil {
		m.QueueDepth.Set(float64(depth))
	}
}

func (m *Metrics) finished(kind Kind, state string, d time.Duration) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(kind.String(), state).Inc()
	m.Duration.WithLabelValues(kind.String()).Observe(d.Seconds())
}
