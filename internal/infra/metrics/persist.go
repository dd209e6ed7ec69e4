package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(persistFailures, persistRetries)
}

var (
	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seller_persist_failures_total",
			Help: "Seller Store upserts that failed in the request path.",
		},
	)

	persistRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seller_persist_retries_total",
			Help: "Background upsert retries by outcome (recovered/exhausted).",
		},
		[]string{"outcome"},
	)
)

func IncPersistFailure() { persistFailures.Inc() }

func IncPersistRetry(outcome string) {
	persistRetries.WithLabelValues(norm(outcome)).Inc()
}
