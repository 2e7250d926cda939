package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// RuleMetrics records business-rule outcomes such as capacity checks and payment reconciliation.
type RuleMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewRuleMetrics registers the rule metrics on the provided registerer.
func NewRuleMetrics(reg prometheus.Registerer) *RuleMetrics {
	if reg == nil {
		return &RuleMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warehouse_rule_duration_seconds",
		Help:    "Duration of business rule evaluations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"rule"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_rule_outcomes_total",
		Help: "Business rule evaluations by outcome.",
	}, []string{"rule", "outcome"})
	reg.MustRegister(duration, outcomes)
	return &RuleMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// Observe records one evaluation of rule with its outcome and elapsed time.
func (m *RuleMetrics) Observe(rule, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if m.duration != nil {
		m.duration.WithLabelValues(normalizeLabel(rule)).Observe(elapsed.Seconds())
	}
	if m.outcomes != nil {
		m.outcomes.WithLabelValues(normalizeLabel(rule), normalizeLabel(outcome)).Inc()
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
