// Package metrics exposes Prometheus collectors for the payment gate.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Payment-gate Prometheus metrics.
var (
	GateLinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dpps",
			Name:      "gate_lines_total",
			Help:      "Proposal lines validated, by disposition",
		},
		[]string{"status"},
	)

	DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dpps",
			Name:      "detections_total",
			Help:      "Best matches found for proposal lines, by risk level",
		},
		[]string{"risk_level"},
	)

	CaseTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dpps",
			Name:      "case_transitions_total",
			Help:      "Cases opened, confirmed or released",
		},
		[]string{"status"},
	)

	GateValidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dpps",
			Name:      "gate_validation_duration_seconds",
			Help:      "Time spent validating one payment proposal",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(GateLinesTotal)
	prometheus.MustRegister(DetectionsTotal)
	prometheus.MustRegister(CaseTransitionsTotal)
	prometheus.MustRegister(GateValidationDuration)
}

// ObserveLine records the disposition of one proposal line and, when it had
// a match, the match's risk level.
func ObserveLine(status, riskLevel string) {
	GateLinesTotal.WithLabelValues(status).Inc()
	if riskLevel != "" {
		DetectionsTotal.WithLabelValues(riskLevel).Inc()
	}
}

// ObserveValidation records how long a proposal validation took.
func ObserveValidation(start time.Time) {
	GateValidationDuration.Observe(time.Since(start).Seconds())
}

// ObserveCase counts a case entering status.
func ObserveCase(status string) {
	CaseTransitionsTotal.WithLabelValues(status).Inc()
}
