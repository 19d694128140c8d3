package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the call queue.
type Metrics struct {
	Transitions *prometheus.CounterVec
	WaitTime    prometheus.Histogram
	QueueDepth  prometheus.Gauge
}

// New creates a new Metrics instance with all call-queue metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "screening_callqueue_transitions_total",
			Help: "Total call-queue transitions by operation and result",
		}, []string{"op", "result"}),

		WaitTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "screening_callqueue_wait_seconds",
			Help:    "Time callers waited before an agent claimed them",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "screening_callqueue_waiting",
			Help: "Callers currently waiting",
		}),
	}
}

// IncrementTransition records one transition attempt.
func (m *Metrics) IncrementTransition(op, result string) {
	if m != nil {
		m.Transitions.WithLabelValues(op, result).Inc()
	}
}

// ObserveWait records how long a claimed caller waited.
func (m *Metrics) ObserveWait(d time.Duration) {
	if m != nil {
		m.WaitTime.Observe(d.Seconds())
	}
}

// SetDepth records the current queue length.
func (m *Metrics) SetDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
