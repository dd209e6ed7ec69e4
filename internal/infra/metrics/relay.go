package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(relayDeltas, relayFallbacks, relayLatencyMs, promptTokens)
}

var (
	relayDeltas = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_deltas_total",
			Help: "Text deltas forwarded from the completion upstream to callers.",
		},
	)

	relayFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_fallbacks_total",
			Help: "Turns answered with canned text, by reason (unavailable/stream_error).",
		},
		[]string{"reason"},
	)

	relayLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_latency_ms",
			Help:    "Completion relay duration in milliseconds, connect to sentinel.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"outcome"},
	)

	promptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_prompt_tokens_total",
			Help: "Estimated prompt tokens sent upstream per model.",
		},
		[]string{"model"},
	)
)

func IncRelayDelta() { relayDeltas.Inc() }

func IncRelayFallback(reason string) {
	relayFallbacks.WithLabelValues(norm(reason)).Inc()
}

// ObserveRelayLatency records one relay by outcome:
// success, fallback, truncated or aborted.
func ObserveRelayLatency(latencyMs int64, outcome string) {
	relayLatencyMs.WithLabelValues(norm(outcome)).Observe(float64(latencyMs))
}

func AddPromptTokens(model string, n int) {
	promptTokens.WithLabelValues(norm(model)).Add(float64(n))
}
