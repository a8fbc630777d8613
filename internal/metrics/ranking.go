package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ranking and extraction Prometheus metrics.
var (
	RankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "End-to-end ranking duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// CandidatesTotal counts candidates per ranking outcome: scored, skipped, failed.
	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_candidates_total",
			Help:      "Candidates seen by the ranker, by outcome",
		},
		[]string{"outcome"},
	)

	// RankingDegradedTotal counts rankings answered empty instead of failing.
	RankingDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_degraded_total",
			Help:      "Ranking requests answered with an empty list, by reason",
		},
		[]string{"reason"},
	)

	ExtractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Requirement extraction sub-steps that failed and fell back to empty",
		},
		[]string{"step"},
	)
)

var rankMetricsRegistered bool

// RegisterRankingMetrics registers ranking metrics. Must be called once from main.
func RegisterRankingMetrics() {
	if rankMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankingDuration)
	prometheus.MustRegister(CandidatesTotal)
	prometheus.MustRegister(RankingDegradedTotal)
	prometheus.MustRegister(ExtractionFailuresTotal)
	rankMetricsRegistered = true
}

// ExtractionFailures counts failed extraction steps in ExtractionFailuresTotal.
type ExtractionFailures struct{}

// Inc increments the counter for step.
func (ExtractionFailures) Inc(step string) {
	ExtractionFailuresTotal.WithLabelValues(step).Inc()
}
