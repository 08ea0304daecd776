// Package services – verification metrics.
//
// Domain-level Prometheus collectors, complementing the HTTP edge metrics
// in internal/http/middleware. Labels are bounded: six states and four
// decisions give a fixed cardinality of at most 24 series for the outcome
// counter.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// verificationsTotal counts completed verifications by final state and
	// trust decision.
	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifications_total",
			Help: "Total number of completed code verifications.",
		},
		[]string{"state", "decision"},
	)

	// incidentsOpenedTotal counts investigative incidents opened by the
	// verification pipeline.
	incidentsOpenedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_incidents_opened_total",
			Help: "Total number of incidents opened for regulator follow-up.",
		},
	)

	// riskAssessorFailures counts assessor calls that ended in the
	// fail-open path (error, timeout, unparsable output).
	riskAssessorFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_risk_assessor_failures_total",
			Help: "Total number of risk assessor calls recovered fail-open.",
		},
	)

	// guideFallbacks counts product guides served from the deterministic
	// fallback instead of the model.
	guideFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_guide_fallbacks_total",
			Help: "Total number of product guides served from the deterministic fallback.",
		},
	)
)

func init() {
	prometheus.MustRegister(verificationsTotal, incidentsOpenedTotal, riskAssessorFailures, guideFallbacks)
}
