package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(turnsTotal, rateLimitedTotal)
}

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_turns_total",
			Help: "Turns processed per step; advanced=false means the validator re-asked.",
		},
		[]string{"step", "advanced"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onboarding_rate_limited_total",
			Help: "Turns rejected by the per-seller rate limiter.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncTurn(step string, advanced bool) {
	turnsTotal.WithLabelValues(norm(step), strconv.FormatBool(advanced)).Inc()
}

func IncRateLimited() { rateLimitedTotal.Inc() }
