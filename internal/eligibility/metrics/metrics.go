package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the eligibility module.
type Metrics struct {
	// Outcomes by classification and device class
	Outcomes *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram

	// Wizard interactions by event type
	WizardEvents *prometheus.CounterVec

	// Wizard navigations pulled back by a failing gate
	GateClamps prometheus.Counter

	// Tally and audit side effects that failed
	SideEffectFailures *prometheus.CounterVec
}

// New creates a new Metrics instance with all eligibility metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "screening_eligibility_outcomes_total",
			Help: "Total eligibility outcomes by classification and device class",
		}, []string{"outcome", "device"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "screening_eligibility_evaluate_duration_seconds",
			Help:    "Duration of a full evaluation including tally and audit side effects",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		WizardEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "screening_wizard_events_total",
			Help: "Total questionnaire events applied by type",
		}, []string{"type"}),

		GateClamps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "screening_wizard_gate_clamps_total",
			Help: "Total questionnaire events whose requested step was clamped by a gate",
		}),

		SideEffectFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "screening_eligibility_side_effect_failures_total",
			Help: "Total tally or audit failures during evaluation",
		}, []string{"kind"}), // kind: "tally", "audit"
	}
}

// IncrementOutcome records one classification.
func (m *Metrics) IncrementOutcome(outcome, device string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome, device).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementWizardEvent records one applied questionnaire event.
func (m *Metrics) IncrementWizardEvent(eventType string) {
	if m != nil {
		m.WizardEvents.WithLabelValues(eventType).Inc()
	}
}

// IncrementGateClamp records a navigation that a gate cut short.
func (m *Metrics) IncrementGateClamp() {
	if m != nil {
		m.GateClamps.Inc()
	}
}

// IncrementSideEffectFailure records a failed tally or audit write.
func (m *Metrics) IncrementSideEffectFailure(kind string) {
	if m != nil {
		m.SideEffectFailures.WithLabelValues(kind).Inc()
	}
}
