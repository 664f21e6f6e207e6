package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ranking Prometheus metrics.
var (
	RelatedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindred",
			Name:      "related_requests_total",
			Help:      "Total number of related-content ranking requests",
		},
		[]string{"outcome"}, // "ok" / "invalid"
	)

	RelatedResultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kindred",
			Name:      "related_result_size",
			Help:      "Number of items returned per ranking request",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)
)

var rankingMetricsRegistered bool

// RegisterRankingMetrics registers Prometheus ranking metrics. Must be called once from main.
func RegisterRankingMetrics() {
	if rankingMetricsRegistered {
		return
	}
	prometheus.MustRegister(RelatedRequestsTotal)
	prometheus.MustRegister(RelatedResultSize)
	rankingMetricsRegistered = true
}
